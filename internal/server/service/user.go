package service

import (
	"time"

	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/model"
	"github.com/mdouchement/todo/internal/sferror"
	"github.com/pkg/errors"
)

// NonFieldErrors is the key of the errors that are not bound to a form field.
const NonFieldErrors = "__all__"

type (
	// A UserService is a service used to register and authenticate users.
	UserService interface {
		Register(params RegisterParams) (*model.User, error)
		Login(params LoginParams) (*model.User, error)
	}

	// RegisterParams are used to register a user.
	RegisterParams struct {
		Username             string `form:"username"  sanitize:"trim" validate:"required,max=150,username"`
		Password             string `form:"password1" validate:"required,min=8"`
		PasswordConfirmation string `form:"password2" validate:"required,eqfield=Password"`
	}

	// LoginParams are used to login a user.
	LoginParams struct {
		Username string `form:"username" sanitize:"trim" validate:"required"`
		Password string `form:"password" validate:"required"`
		Next     string `form:"next"     sanitize:"trim"`
	}

	userService struct {
		db database.Client
	}
)

// NewUser returns a new UserService.
func NewUser(db database.Client) UserService {
	return &userService{
		db: db,
	}
}

func (s *userService) Register(params RegisterParams) (*model.User, error) {
	if err := check(params); err != nil {
		return nil, err
	}

	// Check if the username is free to use.
	u, err := s.db.FindUserByUsername(params.Username)
	if err != nil && !s.db.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not get access to database")
	}
	if u != nil {
		return nil, sferror.NewValidationError("username", "A user with that username already exists.")
	}

	// Initialize user
	user := &model.User{
		Username: params.Username,
	}

	// Crypt password
	user.Password, err = argon2.GenerateFromPasswordString(params.Password, argon2.Default)
	if err != nil {
		return nil, errors.Wrap(err, "could not store user password safe")
	}
	user.PasswordUpdatedAt = time.Now().Unix()

	// Persist the model
	if err := s.db.Save(user); err != nil {
		if s.db.IsAlreadyExists(err) {
			// Registered concurrently.
			return nil, sferror.NewValidationError("username", "A user with that username already exists.")
		}
		return nil, errors.Wrap(err, "could not persist user")
	}

	return user, nil
}

func (s *userService) Login(params LoginParams) (*model.User, error) {
	if err := check(params); err != nil {
		return nil, err
	}

	invalid := sferror.NewValidationError(
		NonFieldErrors,
		"Please enter a correct username and password. Note that both fields may be case-sensitive.",
	)

	// Retrieve user
	user, err := s.db.FindUserByUsername(params.Username)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, invalid
		}
		return nil, errors.Wrap(err, "could not get user")
	}

	// Verify password
	if err = argon2.CompareHashAndPasswordString(user.Password, params.Password); err != nil {
		if err == argon2.ErrMismatchedHashAndPassword {
			return nil, invalid
		}
		return nil, errors.Wrap(err, "could not validate password")
	}

	return user, nil
}
