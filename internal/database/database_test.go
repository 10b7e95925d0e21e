package database_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/model"
	"github.com/stretchr/testify/assert"
)

func backends(t *testing.T, fn func(t *testing.T, db database.Client)) {
	configs := []database.Config{
		{Driver: database.DriverStorm, Codec: "msgpack"},
		{Driver: database.DriverStorm, Codec: "cbor"},
		{Driver: database.DriverSQLite},
	}

	for _, cfg := range configs {
		cfg := cfg
		t.Run(cfg.Driver+cfg.Codec, func(t *testing.T) {
			cfg.Path = filepath.Join(t.TempDir(), "todo.db")
			if !assert.NoError(t, database.Init(cfg)) {
				return
			}

			db, err := database.Open(cfg)
			if !assert.NoError(t, err) {
				return
			}
			defer db.Close()

			fn(t, db)
		})
	}
}

func createUser(t *testing.T, db database.Client, username string) *model.User {
	user := &model.User{Username: username, Password: "hash"}
	assert.NoError(t, db.Save(user))
	return user
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := database.Open(database.Config{Driver: "oracle"})
	assert.EqualError(t, err, "unsupported database driver: oracle")

	_, err = database.StormCodec("yaml")
	assert.EqualError(t, err, "unsupported storm codec: yaml")
}

func TestUsers(t *testing.T) {
	backends(t, func(t *testing.T, db database.Client) {
		user := createUser(t, db, "george")
		assert.NotZero(t, user.ID)
		assert.NotNil(t, user.CreatedAt)
		assert.NotNil(t, user.UpdatedAt)

		u, err := db.FindUser(user.ID)
		assert.NoError(t, err)
		assert.Equal(t, "george", u.Username)
		assert.Equal(t, "hash", u.Password)

		u, err = db.FindUserByUsername("george")
		assert.NoError(t, err)
		assert.Equal(t, user.ID, u.ID)

		_, err = db.FindUserByUsername("nobody")
		assert.True(t, db.IsNotFound(err))

		err = db.Save(&model.User{Username: "george"})
		assert.Error(t, err)
		assert.True(t, db.IsAlreadyExists(err))
		assert.False(t, db.IsNotFound(err))
	})
}

func TestTodos(t *testing.T) {
	backends(t, func(t *testing.T, db database.Client) {
		george := createUser(t, db, "george")
		ginette := createUser(t, db, "ginette")

		milk := model.NewTodo(george.ID, "Buy milk")
		assert.NoError(t, db.Save(milk))
		bread := model.NewTodo(george.ID, "Buy bread")
		assert.NoError(t, db.Save(bread))
		assert.Greater(t, bread.ID, milk.ID)

		other := model.NewTodo(ginette.ID, "Walk the dog")
		assert.NoError(t, db.Save(other))

		// Newest first.
		todos, err := db.FindTodosByUserID(george.ID, false)
		assert.NoError(t, err)
		if assert.Len(t, todos, 2) {
			assert.Equal(t, "Buy bread", todos[0].Name)
			assert.Equal(t, "Buy milk", todos[1].Name)
		}

		// Ownership scoped lookup.
		todo, err := db.FindTodoByUserID(milk.ID, george.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Buy milk", todo.Name)

		_, err = db.FindTodoByUserID(milk.ID, ginette.ID)
		assert.True(t, db.IsNotFound(err))
		_, err = db.FindTodoByUserID(other.ID, george.ID)
		assert.True(t, db.IsNotFound(err))

		// Completion keeps the record but hides it from the active list.
		todo.Complete()
		assert.NoError(t, db.Save(todo))

		todos, err = db.FindTodosByUserID(george.ID, false)
		assert.NoError(t, err)
		if assert.Len(t, todos, 1) {
			assert.Equal(t, bread.ID, todos[0].ID)
		}

		todos, err = db.FindTodosByUserID(george.ID, true)
		assert.NoError(t, err)
		if assert.Len(t, todos, 1) {
			assert.Equal(t, milk.ID, todos[0].ID)
			assert.True(t, todos[0].IsCompleted)
		}

		// Deletion is permanent.
		assert.NoError(t, db.Delete(todo))
		_, err = db.FindTodoByUserID(milk.ID, george.ID)
		assert.True(t, db.IsNotFound(err))
		assert.True(t, db.IsNotFound(db.Delete(todo)))

		// Bulk deletion only touches the given user.
		assert.NoError(t, db.DeleteTodosByUserID(george.ID))
		todos, err = db.FindTodosByUserID(george.ID, false)
		assert.NoError(t, err)
		assert.Empty(t, todos)

		todos, err = db.FindTodosByUserID(ginette.ID, false)
		assert.NoError(t, err)
		assert.Len(t, todos, 1)
	})
}

func TestTodoOwnerIsImmutable(t *testing.T) {
	backends(t, func(t *testing.T, db database.Client) {
		george := createUser(t, db, "george")

		todo := model.NewTodo(george.ID, "Buy milk")
		assert.NoError(t, db.Save(todo))

		todo.Name = "Buy oat milk"
		assert.NoError(t, db.Save(todo))

		found, err := db.FindTodoByUserID(todo.ID, george.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Buy oat milk", found.Name)
		assert.Equal(t, george.ID, found.UserID)
		assert.False(t, found.IsCompleted)
	})
}

func TestSessions(t *testing.T) {
	backends(t, func(t *testing.T, db database.Client) {
		george := createUser(t, db, "george")

		active := &model.Session{
			UserID:    george.ID,
			UserAgent: "Go-http-client/1.1",
			Token:     "active",
			ExpireAt:  time.Now().Add(time.Hour),
		}
		assert.NoError(t, db.Save(active))

		expired := &model.Session{
			UserID:   george.ID,
			Token:    "expired",
			ExpireAt: time.Now().Add(-time.Hour),
		}
		assert.NoError(t, db.Save(expired))

		err := db.Save(&model.Session{UserID: george.ID, Token: "active", ExpireAt: time.Now()})
		assert.True(t, db.IsAlreadyExists(err))

		session, err := db.FindSession(active.ID)
		assert.NoError(t, err)
		assert.Equal(t, "active", session.Token)
		assert.Equal(t, "Go-http-client/1.1", session.UserAgent)
		assert.False(t, session.Expired(time.Now()))

		sessions, err := db.FindSessionsByUserID(george.ID)
		assert.NoError(t, err)
		assert.Len(t, sessions, 2)

		assert.NoError(t, db.DeleteExpiredSessions(time.Now()))
		sessions, err = db.FindSessionsByUserID(george.ID)
		assert.NoError(t, err)
		if assert.Len(t, sessions, 1) {
			assert.Equal(t, active.ID, sessions[0].ID)
		}

		assert.NoError(t, db.DeleteSessionsByUserID(george.ID))
		_, err = db.FindSession(active.ID)
		assert.True(t, db.IsNotFound(err))
	})
}
