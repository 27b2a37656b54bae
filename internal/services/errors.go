package services

import (
	"errors"
	"fmt"

	"storerate/internal/repositories"
)

// Kind classifies a service failure. Handlers map each kind to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// UnavailableMessage is shown to clients when the database cannot be reached.
const UnavailableMessage = "Database connection failed. Please try again."

// Error is a classified failure with a message safe to show to clients.
// Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// fromRepo classifies a repository error. notFound and conflict are the
// client messages used for the matching sentinels.
func fromRepo(err error, notFound, conflict string) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrUnavailable):
		return &Error{Kind: KindUnavailable, Message: UnavailableMessage, Err: err}
	case errors.Is(err, repositories.ErrNotFound) && notFound != "":
		return &Error{Kind: KindNotFound, Message: notFound, Err: err}
	case errors.Is(err, repositories.ErrDuplicate) && conflict != "":
		return &Error{Kind: KindConflict, Message: conflict, Err: err}
	case errors.Is(err, repositories.ErrConstraint):
		return &Error{Kind: KindValidation, Message: "Request violates a data constraint", Err: err}
	}
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}
