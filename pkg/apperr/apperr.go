// Package apperr defines the closed error taxonomy of the service. Handlers
// map each kind to an HTTP status; usecases never return naked strings for
// expected failures.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindDuplicate
	KindInsufficientStock
	KindCascadeIntegrity
	KindResourceBusy
)

type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }
func (e *Error) Kind() Kind    { return e.kind }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func Duplicate(format string, args ...interface{}) *Error {
	return newf(KindDuplicate, format, args...)
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return newf(KindInsufficientStock, format, args...)
}

func CascadeIntegrity(format string, args ...interface{}) *Error {
	return newf(KindCascadeIntegrity, format, args...)
}

// ResourceBusy marks a contention failure the client may simply retry.
func ResourceBusy(format string, args ...interface{}) *Error {
	return newf(KindResourceBusy, format, args...)
}

func Internal(msg string, err error) *Error {
	return &Error{kind: KindInternal, msg: msg, err: err}
}

// Wrap attaches a cause without changing the kind or message.
func Wrap(e *Error, cause error) *Error {
	return &Error{kind: e.kind, msg: e.msg, err: cause}
}

func kindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.kind, true
	}
	return KindInternal, false
}

func IsValidation(err error) bool        { k, ok := kindOf(err); return ok && k == KindValidation }
func IsNotFound(err error) bool          { k, ok := kindOf(err); return ok && k == KindNotFound }
func IsDuplicate(err error) bool         { k, ok := kindOf(err); return ok && k == KindDuplicate }
func IsInsufficientStock(err error) bool { k, ok := kindOf(err); return ok && k == KindInsufficientStock }
func IsCascadeIntegrity(err error) bool  { k, ok := kindOf(err); return ok && k == KindCascadeIntegrity }
func IsResourceBusy(err error) bool      { k, ok := kindOf(err); return ok && k == KindResourceBusy }

// HTTPStatus maps an error to the response code. Integrity and internal
// failures deliberately collapse to 500 so internals do not leak.
func HTTPStatus(err error) int {
	switch k, _ := kindOf(err); k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	case KindInsufficientStock:
		return http.StatusUnprocessableEntity
	case KindResourceBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is what the client sees. Internal and cascade-integrity
// errors get a generic description.
func PublicMessage(err error) string {
	k, ok := kindOf(err)
	if !ok || k == KindInternal || k == KindCascadeIntegrity {
		return "internal server error"
	}
	var e *Error
	errors.As(err, &e)
	return e.msg
}
