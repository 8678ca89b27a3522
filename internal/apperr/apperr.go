package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindValidation
	KindDependencyUnavailable
)

// Error carries a kind plus a human-readable detail string.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Wrap(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func NotFound(detail string) *Error     { return New(KindNotFound, detail) }
func Unauthorized(detail string) *Error { return New(KindUnauthorized, detail) }
func Forbidden(detail string) *Error    { return New(KindForbidden, detail) }
func Conflict(detail string) *Error     { return New(KindConflict, detail) }
func Validation(detail string) *Error   { return New(KindValidation, detail) }

func DependencyUnavailable(detail string, err error) *Error {
	return Wrap(KindDependencyUnavailable, detail, err)
}

func Internal(detail string, err error) *Error {
	return Wrap(KindInternal, detail, err)
}

// KindOf extracts the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindDependencyUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Detail returns the human-readable detail of err, or a generic fallback
// so internal messages never leak to clients.
func Detail(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Detail
	}
	return "internal server error"
}
