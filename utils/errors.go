package utils

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Error taxonomy for the engine. Controllers map these onto HTTP
// statuses with HTTPStatus; everything else is a 500.

// ValidationError rejects a request before any state change.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ReferentialMismatchError signals that a referenced child does not
// belong to the targeted aggregate, e.g. a planned food item logged
// against a scheduled meal from a different meal time.
type ReferentialMismatchError struct {
	Msg string
}

func (e *ReferentialMismatchError) Error() string { return e.Msg }

func Mismatchf(format string, args ...any) error {
	return &ReferentialMismatchError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError covers stale ids and already-deleted records. Delete
// paths treat it as informational, not fatal.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// ErrAuthExpired is non-retryable; the caller must re-authenticate.
var ErrAuthExpired = errors.New("session expired")

// TransientError wraps a failure that is safe to retry on read paths.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// AsNotFound converts gorm's record-not-found into the taxonomy,
// passing other errors through.
func AsNotFound(err error, resource string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return err
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		rm *ReferentialMismatchError
		nf *NotFoundError
		tr *TransientError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &rm):
		return http.StatusUnprocessableEntity
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.Is(err, ErrAuthExpired):
		return http.StatusUnauthorized
	case errors.As(err, &tr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
