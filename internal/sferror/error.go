package sferror

import (
	"net/http"

	"github.com/pkg/errors"
)

type (
	// An SFError represents an error that can be rendered by the todo server.
	SFError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if sferr, ok := errors.Cause(err).(*SFError); ok && sferr.HTTPCode != 0 {
		return sferr.HTTPCode
	}
	return http.StatusInternalServerError
}

// New returns a new SFError with the given message.
func New(message string) *SFError {
	return &SFError{FieldError: err{Message: message}}
}

// NewWithTagCode returns a new SFError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *SFError {
	return &SFError{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// NotFound returns a 404 SFError.
func NotFound(message string) *SFError {
	return NewWithTagCode(http.StatusNotFound, "not-found", message)
}

// Invalid returns a 422 SFError.
func Invalid(message string) *SFError {
	return NewWithTagCode(http.StatusUnprocessableEntity, "invalid-parameters", message)
}

// IsNotFound returns true if err is, or wraps, a 404 SFError.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// Error implements error interface.
func (e *SFError) Error() string {
	return e.FieldError.Message
}

// Tag returns the machine readable tag of the error.
func (e *SFError) Tag() string {
	return e.FieldError.Tag
}
