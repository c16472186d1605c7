package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HSouheill/couplecanvas_backend/repositories"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound means the referenced record does not exist
	ErrNotFound = repositories.ErrNotFound
	// ErrEmailTaken means a vendor already registered with the email
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned by logins regardless of which part was wrong
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError reports bad input. No write has happened when it is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PartialFailureError is returned when a fan-out stopped after some of its
// writes were applied. The intent named by OperationID is left for replay.
type PartialFailureError struct {
	Operation   string
	OperationID string
	Step        string
	Completed   []string
	Err         error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s %s stopped at %s after [%s]: %v",
		e.Operation, e.OperationID, e.Step, strings.Join(e.Completed, ", "), e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPartial reports whether err carries a PartialFailureError.
func IsPartial(err error) bool {
	var pe *PartialFailureError
	return errors.As(err, &pe)
}

// FromValidator turns the first validator failure into a ValidationError
func FromValidator(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return invalid(field, "is required")
	case "email":
		return invalid(field, "must be a valid email address")
	case "oneof":
		return invalid(field, "must be one of [%s]", fe.Param())
	case "min":
		return invalid(field, "must have at least %s item(s) or characters", fe.Param())
	case "unique":
		return invalid(field, "must not contain duplicates")
	case "gt":
		return invalid(field, "must be greater than %s", fe.Param())
	case "gte":
		return invalid(field, "must be at least %s", fe.Param())
	}
	return invalid(field, "failed %s validation", fe.Tag())
}
