package sferror

import (
	"sort"
	"strings"
)

// A ValidationError holds the field-level errors of a submitted form.
// It is rendered along the form, never as an error page.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError with a single field error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Error implements error interface.
func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for field, message := range e.Fields {
		messages = append(messages, field+": "+message)
	}
	sort.Strings(messages)
	return strings.Join(messages, ", ")
}
