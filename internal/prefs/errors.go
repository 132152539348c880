package prefs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrForbidden is returned when the caller lacks the required identity or role.
	ErrForbidden = errors.New("you do not have permission to perform this action")
	// ErrInvalidCredentials is returned by Authenticate for any unknown user or
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	msgInvalidType   = "Invalid Notification type passed"
	msgTypeExists    = "Notification Type already exists"
	msgUsernameTaken = "A user with that username already exists."
	msgRequired      = "This field is required."
	msgNotNull       = "This field may not be null."
	msgNotBoolean    = "Must be a valid boolean."
)

// FieldErrors maps a field name to its validation messages.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// ValidationError reports malformed or out-of-vocabulary input.
type ValidationError struct {
	Message string
	Fields  FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func newFieldError(field, msg string) *ValidationError {
	return &ValidationError{Message: msg, Fields: FieldErrors{field: {msg}}}
}

func invalidChoice(value string) string {
	return fmt.Sprintf("%q is not a valid choice.", value)
}

// DuplicateError reports a uniqueness violation on Field.
type DuplicateError struct {
	Field   string
	Message string
}

func (e *DuplicateError) Error() string {
	return e.Message
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Detail string
}

func (e *NotFoundError) Error() string {
	return e.Detail
}
