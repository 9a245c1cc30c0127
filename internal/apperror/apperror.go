// Package apperror defines the typed errors raised by the catalog, stock and
// transaction services. Every error carries a Kind, which decides whether it is
// the client's fault and which HTTP status the API answers with.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindConflict            Kind = "CONFLICT"
	KindInvalidState        Kind = "INVALID_STATE"
	KindInsufficientStock   Kind = "INSUFFICIENT_STOCK"
	KindInvalidPayment      Kind = "INVALID_PAYMENT"
	KindOverPayment         Kind = "OVER_PAYMENT"
	KindAlreadySettled      Kind = "ALREADY_SETTLED"
	KindAlreadyCancelled    Kind = "ALREADY_CANCELLED"
	KindHasPayments         Kind = "HAS_PAYMENTS"
	KindNotADebtTransaction Kind = "NOT_A_DEBT_TRANSACTION"
	KindValidation          Kind = "VALIDATION"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindForbidden           Kind = "FORBIDDEN"
	KindInternal            Kind = "INTERNAL"
)

// parents lists kinds that are refinements of a broader kind.
var parents = map[Kind]Kind{
	KindOverPayment:    KindInvalidPayment,
	KindAlreadySettled: KindInvalidPayment,
}

var statuses = map[Kind]int{
	KindNotFound:            http.StatusNotFound,
	KindConflict:            http.StatusConflict,
	KindInvalidState:        http.StatusUnprocessableEntity,
	KindInsufficientStock:   http.StatusUnprocessableEntity,
	KindInvalidPayment:      http.StatusBadRequest,
	KindOverPayment:         http.StatusBadRequest,
	KindAlreadySettled:      http.StatusBadRequest,
	KindAlreadyCancelled:    http.StatusConflict,
	KindHasPayments:         http.StatusConflict,
	KindNotADebtTransaction: http.StatusBadRequest,
	KindValidation:          http.StatusBadRequest,
	KindUnauthorized:        http.StatusUnauthorized,
	KindForbidden:           http.StatusForbidden,
	KindInternal:            http.StatusInternalServerError,
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

// Sentinels for errors.Is. Any *Error of the same kind (or a refinement of it) matches.
var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrInvalidState        = &Error{Kind: KindInvalidState}
	ErrInsufficientStock   = &Error{Kind: KindInsufficientStock}
	ErrInvalidPayment      = &Error{Kind: KindInvalidPayment}
	ErrOverPayment         = &Error{Kind: KindOverPayment}
	ErrAlreadySettled      = &Error{Kind: KindAlreadySettled}
	ErrAlreadyCancelled    = &Error{Kind: KindAlreadyCancelled}
	ErrHasPayments         = &Error{Kind: KindHasPayments}
	ErrNotADebtTransaction = &Error{Kind: KindNotADebtTransaction}
	ErrValidation          = &Error{Kind: KindValidation}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrInternal            = &Error{Kind: KindInternal}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == e.Kind {
		return true
	}
	return parents[e.Kind] == t.Kind
}

// Status is the HTTP status the API answers with for this error.
func (e *Error) Status() int {
	if s, ok := statuses[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ClientFault reports whether the caller caused the error.
func (e *Error) ClientFault() bool {
	return e.Status() < http.StatusInternalServerError
}

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return New(KindInvalidState, format, args...)
}

func InsufficientStock(format string, args ...interface{}) *Error {
	return New(KindInsufficientStock, format, args...)
}

func InvalidPayment(format string, args ...interface{}) *Error {
	return New(KindInvalidPayment, format, args...)
}

func Validation(fields []FieldError) *Error {
	msg := "validation failed"
	if len(fields) > 0 {
		msg = fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", fields[0].Field, fields[0].Tag)
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Internal wraps an unexpected failure, usually from the datastore.
func Internal(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// As extracts the *Error in err's chain. Anything else is reported as Internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err, "internal error")
}
