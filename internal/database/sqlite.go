package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/mdouchement/todo/internal/model"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		username            TEXT    NOT NULL UNIQUE,
		password            TEXT    NOT NULL DEFAULT '',
		password_updated_at INTEGER NOT NULL DEFAULT 0,
		created_at          INTEGER NOT NULL,
		updated_at          INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		user_agent TEXT    NOT NULL DEFAULT '',
		token      TEXT    NOT NULL UNIQUE,
		expire_at  INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_user_id ON sessions(user_id)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name         TEXT    NOT NULL DEFAULT '',
		is_completed INTEGER NOT NULL DEFAULT 0,
		created_at   INTEGER NOT NULL,
		updated_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS todos_user_id_is_completed ON todos(user_id, is_completed)`,
}

type sqlt struct {
	db *sql.DB
}

func sqliteDSN(database string) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	params.Add("_pragma", "journal_mode(WAL)")
	return fmt.Sprintf("file:%s?%s", database, params.Encode())
}

func sqliteOpen(database string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(database))
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	for _, stmt := range sqliteSchema {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "could not migrate schema")
		}
	}
	return db, nil
}

// SQLiteInit initializes SQLite database.
func SQLiteInit(database string) error {
	db, err := sqliteOpen(database)
	if err != nil {
		return err
	}
	return db.Close()
}

// SQLiteReIndex reindex SQLite database.
func SQLiteReIndex(database string) error {
	db, err := sqliteOpen(database)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Exec("REINDEX")
	return errors.Wrap(err, "could not reindex")
}

// SQLiteOpen returns a new SQLite database connection.
// The schema is created when missing.
func SQLiteOpen(database string) (Client, error) {
	db, err := sqliteOpen(database)
	if err != nil {
		return nil, err
	}

	return &sqlt{
		db: db,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *sqlt) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == 0 {
		m.SetCreatedAt(t)
		return errors.Wrap(c.insert(m), "could not save the model")
	}
	return errors.Wrap(c.update(m), "could not save the model")
}

func (c *sqlt) insert(m model.Model) error {
	var (
		result sql.Result
		err    error
	)

	switch v := m.(type) {
	case *model.User:
		result, err = c.db.Exec(
			"INSERT INTO users (username, password, password_updated_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			v.Username, v.Password, v.PasswordUpdatedAt, unix(v.CreatedAt), unix(v.UpdatedAt),
		)
	case *model.Session:
		result, err = c.db.Exec(
			"INSERT INTO sessions (user_id, user_agent, token, expire_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			v.UserID, v.UserAgent, v.Token, v.ExpireAt.UnixNano(), unix(v.CreatedAt), unix(v.UpdatedAt),
		)
	case *model.Todo:
		result, err = c.db.Exec(
			"INSERT INTO todos (user_id, name, is_completed, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			v.UserID, v.Name, v.IsCompleted, unix(v.CreatedAt), unix(v.UpdatedAt),
		)
	default:
		return errors.Errorf("unsupported model %T", m)
	}
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	m.SetID(int(id))
	return nil
}

// The owner of a record is never rewritten.
func (c *sqlt) update(m model.Model) error {
	var err error

	switch v := m.(type) {
	case *model.User:
		_, err = c.db.Exec(
			"UPDATE users SET username = ?, password = ?, password_updated_at = ?, updated_at = ? WHERE id = ?",
			v.Username, v.Password, v.PasswordUpdatedAt, unix(v.UpdatedAt), v.ID,
		)
	case *model.Session:
		_, err = c.db.Exec(
			"UPDATE sessions SET user_agent = ?, token = ?, expire_at = ?, updated_at = ? WHERE id = ?",
			v.UserAgent, v.Token, v.ExpireAt.UnixNano(), unix(v.UpdatedAt), v.ID,
		)
	case *model.Todo:
		_, err = c.db.Exec(
			"UPDATE todos SET name = ?, is_completed = ?, updated_at = ? WHERE id = ?",
			v.Name, v.IsCompleted, unix(v.UpdatedAt), v.ID,
		)
	default:
		return errors.Errorf("unsupported model %T", m)
	}
	return err
}

// Delete deletes the entry in database with the given model.
func (c *sqlt) Delete(m model.Model) error {
	var table string
	switch m.(type) {
	case *model.User:
		table = "users"
	case *model.Session:
		table = "sessions"
	case *model.Todo:
		table = "todos"
	default:
		return errors.Errorf("unsupported model %T", m)
	}

	result, err := c.db.Exec("DELETE FROM "+table+" WHERE id = ?", m.GetID())
	if err != nil {
		return errors.Wrap(err, "could not delete the model")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "could not delete the model")
	}
	if n == 0 {
		return errors.Wrap(sql.ErrNoRows, "could not delete the model")
	}
	return nil
}

// Close the database.
func (c *sqlt) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *sqlt) IsNotFound(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

// IsAlreadyExists returns true if err is a unique constraint violation.
func (c *sqlt) IsAlreadyExists(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// FindUser returns the user for the given id.
func (c *sqlt) FindUser(id int) (*model.User, error) {
	row := c.db.QueryRow("SELECT id, username, password, password_updated_at, created_at, updated_at FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	return user, errors.Wrap(err, "find user by id")
}

// FindUserByUsername returns the user for the given username.
func (c *sqlt) FindUserByUsername(username string) (*model.User, error) {
	row := c.db.QueryRow("SELECT id, username, password, password_updated_at, created_at, updated_at FROM users WHERE username = ?", username)
	user, err := scanUser(row)
	return user, errors.Wrap(err, "find user by username")
}

// FindSession returns the session for the given id.
func (c *sqlt) FindSession(id int) (*model.Session, error) {
	row := c.db.QueryRow("SELECT id, user_id, user_agent, token, expire_at, created_at, updated_at FROM sessions WHERE id = ?", id)
	session, err := scanSession(row)
	return session, errors.Wrap(err, "find session by id")
}

// FindSessionsByUserID returns all the sessions for the given user id.
func (c *sqlt) FindSessionsByUserID(userID int) ([]*model.Session, error) {
	rows, err := c.db.Query("SELECT id, user_id, user_agent, token, expire_at, created_at, updated_at FROM sessions WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, errors.Wrap(err, "could not find sessions by user id")
	}
	defer rows.Close()

	sessions := make([]*model.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, errors.Wrap(err, "could not find sessions by user id")
		}
		sessions = append(sessions, session)
	}
	return sessions, errors.Wrap(rows.Err(), "could not find sessions by user id")
}

// DeleteSessionsByUserID deletes all the sessions of the given user.
func (c *sqlt) DeleteSessionsByUserID(userID int) error {
	_, err := c.db.Exec("DELETE FROM sessions WHERE user_id = ?", userID)
	return errors.Wrap(err, "could not delete sessions")
}

// DeleteExpiredSessions removes from database all the sessions expired at the given time.
func (c *sqlt) DeleteExpiredSessions(at time.Time) error {
	_, err := c.db.Exec("DELETE FROM sessions WHERE expire_at <= ?", at.UnixNano())
	return errors.Wrap(err, "could not delete expired sessions")
}

// FindTodoByUserID returns the todo for the given id owned by the given user.
func (c *sqlt) FindTodoByUserID(id, userID int) (*model.Todo, error) {
	row := c.db.QueryRow("SELECT id, user_id, name, is_completed, created_at, updated_at FROM todos WHERE id = ? AND user_id = ?", id, userID)
	todo, err := scanTodo(row)
	return todo, errors.Wrap(err, "could not find todo by user id")
}

// FindTodosByUserID returns the user's todos matching the completed flag, newest first.
func (c *sqlt) FindTodosByUserID(userID int, completed bool) ([]*model.Todo, error) {
	rows, err := c.db.Query("SELECT id, user_id, name, is_completed, created_at, updated_at FROM todos WHERE user_id = ? AND is_completed = ? ORDER BY id DESC", userID, completed)
	if err != nil {
		return nil, errors.Wrap(err, "could not find todos")
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, errors.Wrap(err, "could not find todos")
		}
		todos = append(todos, todo)
	}
	return todos, errors.Wrap(rows.Err(), "could not find todos")
}

// DeleteTodosByUserID deletes all the todos of the given user.
func (c *sqlt) DeleteTodosByUserID(userID int) error {
	_, err := c.db.Exec("DELETE FROM todos WHERE user_id = ?", userID)
	return errors.Wrap(err, "could not delete todos")
}

//
// Scanning
//

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var (
		user                 model.User
		createdAt, updatedAt int64
	)
	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.PasswordUpdatedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	user.SetCreatedAt(timestamp(createdAt))
	user.SetUpdatedAt(timestamp(updatedAt))
	return &user, nil
}

func scanSession(row scanner) (*model.Session, error) {
	var (
		session                        model.Session
		expireAt, createdAt, updatedAt int64
	)
	err := row.Scan(&session.ID, &session.UserID, &session.UserAgent, &session.Token, &expireAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	session.ExpireAt = timestamp(expireAt)
	session.SetCreatedAt(timestamp(createdAt))
	session.SetUpdatedAt(timestamp(updatedAt))
	return &session, nil
}

func scanTodo(row scanner) (*model.Todo, error) {
	var (
		todo                 model.Todo
		createdAt, updatedAt int64
	)
	err := row.Scan(&todo.ID, &todo.UserID, &todo.Name, &todo.IsCompleted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	todo.SetCreatedAt(timestamp(createdAt))
	todo.SetUpdatedAt(timestamp(updatedAt))
	return &todo, nil
}

func unix(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

func timestamp(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}
