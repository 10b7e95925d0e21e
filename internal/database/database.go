package database

import (
	"time"

	"github.com/mdouchement/todo/internal/model"
	"github.com/pkg/errors"
)

// Supported drivers.
const (
	DriverStorm  = "storm"
	DriverSQLite = "sqlite"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is a unique constraint violation.
		IsAlreadyExists(err error) bool

		UserInteraction
		SessionInteraction
		TodoInteraction
	}

	// An UserInteraction defines all the methods used to interact with a user record.
	UserInteraction interface {
		// FindUser returns the user for the given id.
		FindUser(id int) (*model.User, error)
		// FindUserByUsername returns the user for the given username.
		FindUserByUsername(username string) (*model.User, error)
	}

	// An SessionInteraction defines all the methods used to interact with a session record.
	SessionInteraction interface {
		// FindSession returns the session for the given id.
		FindSession(id int) (*model.Session, error)
		// FindSessionsByUserID returns all the sessions for the given user id.
		FindSessionsByUserID(userID int) ([]*model.Session, error)
		// DeleteSessionsByUserID deletes all the sessions of the given user.
		DeleteSessionsByUserID(userID int) error
		// DeleteExpiredSessions removes from database all the sessions expired at the given time.
		DeleteExpiredSessions(at time.Time) error
	}

	// A TodoInteraction defines all the methods used to interact with todo record(s).
	TodoInteraction interface {
		// FindTodoByUserID returns the todo for the given id owned by the given user.
		// A todo owned by someone else is reported as not found.
		FindTodoByUserID(id, userID int) (*model.Todo, error)
		// FindTodosByUserID returns the user's todos matching the completed flag, newest first.
		FindTodosByUserID(userID int, completed bool) ([]*model.Todo, error)
		// DeleteTodosByUserID deletes all the todos of the given user.
		DeleteTodosByUserID(userID int) error
	}
)

// Config holds the database connection settings.
type Config struct {
	Driver string
	Path   string
	// Codec is the Storm serialization format (msgpack, cbor, binc or json).
	Codec string
}

// Init initializes the database schema and indexes.
func Init(cfg Config) error {
	switch cfg.Driver {
	case DriverStorm, "":
		return StormInit(cfg.Path, cfg.Codec)
	case DriverSQLite:
		return SQLiteInit(cfg.Path)
	}
	return errors.Errorf("unsupported database driver: %s", cfg.Driver)
}

// ReIndex rebuilds the database indexes.
func ReIndex(cfg Config) error {
	switch cfg.Driver {
	case DriverStorm, "":
		return StormReIndex(cfg.Path, cfg.Codec)
	case DriverSQLite:
		return SQLiteReIndex(cfg.Path)
	}
	return errors.Errorf("unsupported database driver: %s", cfg.Driver)
}

// Open returns a new database connection according the given configuration.
func Open(cfg Config) (Client, error) {
	switch cfg.Driver {
	case DriverStorm, "":
		return StormOpen(cfg.Path, cfg.Codec)
	case DriverSQLite:
		return SQLiteOpen(cfg.Path)
	}
	return nil, errors.Errorf("unsupported database driver: %s", cfg.Driver)
}
