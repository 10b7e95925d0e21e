package database

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/json"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/mdouchement/todo/internal/model"
	"github.com/mdouchement/todo/pkg/stormbinc"
	"github.com/mdouchement/todo/pkg/stormcbor"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

// StormCodec returns the option defining the format used to store data in the database.
// An empty name selects msgpack.
func StormCodec(name string) (func(*storm.Options) error, error) {
	switch name {
	case "", msgpack.Codec.Name():
		return storm.Codec(msgpack.Codec), nil
	case stormcbor.Codec.Name():
		return storm.Codec(stormcbor.Codec), nil
	case stormbinc.Codec.Name():
		return storm.Codec(stormbinc.Codec), nil
	case json.Codec.Name():
		return storm.Codec(json.Codec), nil
	}
	return nil, errors.Errorf("unsupported storm codec: %s", name)
}

func stormOpen(database, codec string) (*storm.DB, error) {
	option, err := StormCodec(codec)
	if err != nil {
		return nil, err
	}

	db, err := storm.Open(database, option)
	return db, errors.Wrap(err, "could not get database connection")
}

// StormInit initializes Storm database.
func StormInit(database, codec string) error {
	db, err := stormOpen(database, codec)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Init(&model.User{}); err != nil {
		return errors.Wrap(err, "could not init user index")
	}

	if err := db.Init(&model.Session{}); err != nil {
		return errors.Wrap(err, "could not init session index")
	}

	err = db.Init(&model.Todo{})
	return errors.Wrap(err, "could not init todo index")
}

// StormReIndex reindex Storm database.
func StormReIndex(database, codec string) error {
	db, err := stormOpen(database, codec)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ReIndex(&model.User{}); err != nil {
		return errors.Wrap(err, "could not ReIndex users")
	}

	if err := db.ReIndex(&model.Session{}); err != nil {
		return errors.Wrap(err, "could not ReIndex sessions")
	}

	err = db.ReIndex(&model.Todo{})
	return errors.Wrap(err, "could not ReIndex todos")
}

// StormOpen returns a new Storm database connection.
func StormOpen(database, codec string) (Client, error) {
	db, err := stormOpen(database, codec)
	if err != nil {
		return nil, err
	}

	return &strm{
		db: db,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == 0 {
		// The ID is assigned by Storm's increment.
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.db.Save(m), "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.db.DeleteStruct(m), "could not delete the model")
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is nil or a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// IsAlreadyExists returns true if err is a unique constraint violation.
func (c *strm) IsAlreadyExists(err error) bool {
	return errors.Cause(err) == storm.ErrAlreadyExists
}

// FindUser returns the user for the given id.
func (c *strm) FindUser(id int) (*model.User, error) {
	var user model.User
	if err := c.db.One("ID", id, &user); err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

// FindUserByUsername returns the user for the given username.
func (c *strm) FindUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := c.db.One("Username", username, &user); err != nil {
		return nil, errors.Wrap(err, "find user by username")
	}
	return &user, nil
}

// FindSession returns the session for the given id.
func (c *strm) FindSession(id int) (*model.Session, error) {
	var session model.Session
	if err := c.db.One("ID", id, &session); err != nil {
		return nil, errors.Wrap(err, "find session by id")
	}
	return &session, nil
}

// FindSessionsByUserID returns all the sessions for the given user id.
func (c *strm) FindSessionsByUserID(userID int) ([]*model.Session, error) {
	sessions := make([]*model.Session, 0)
	err := c.db.Select(q.Eq("UserID", userID)).OrderBy("ID").Find(&sessions)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find sessions by user id")
	}
	return sessions, nil
}

// DeleteSessionsByUserID deletes all the sessions of the given user.
func (c *strm) DeleteSessionsByUserID(userID int) error {
	err := c.db.Select(q.Eq("UserID", userID)).Delete(&model.Session{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not delete sessions")
	}
	return nil
}

// DeleteExpiredSessions removes from database all the sessions expired at the given time.
func (c *strm) DeleteExpiredSessions(at time.Time) error {
	err := c.db.Select(q.Lte("ExpireAt", at)).Delete(&model.Session{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not delete expired sessions")
	}
	return nil
}

// FindTodoByUserID returns the todo for the given id owned by the given user.
func (c *strm) FindTodoByUserID(id, userID int) (*model.Todo, error) {
	var todo model.Todo
	err := c.db.Select(q.Eq("ID", id), q.Eq("UserID", userID)).First(&todo)
	if err != nil {
		return nil, errors.Wrap(err, "could not find todo by user id")
	}
	return &todo, nil
}

// FindTodosByUserID returns the user's todos matching the completed flag, newest first.
func (c *strm) FindTodosByUserID(userID int, completed bool) ([]*model.Todo, error) {
	todos := make([]*model.Todo, 0)
	err := c.db.Select(q.Eq("UserID", userID), q.Eq("IsCompleted", completed)).OrderBy("ID").Reverse().Find(&todos)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find todos")
	}
	return todos, nil
}

// DeleteTodosByUserID deletes all the todos of the given user.
func (c *strm) DeleteTodosByUserID(userID int) error {
	err := c.db.Select(q.Eq("UserID", userID)).Delete(&model.Todo{})
	if err != nil && !c.IsNotFound(err) {
		return errors.Wrap(err, "could not delete todos")
	}
	return nil
}
