package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	err := fmt.Errorf("pay debt: %w", New(KindOverPayment, "payment 170000 exceeds remaining 300"))

	assert.True(t, errors.Is(err, ErrOverPayment))
	assert.True(t, errors.Is(err, ErrInvalidPayment), "over payment refines invalid payment")
	assert.False(t, errors.Is(err, ErrAlreadySettled))
	assert.False(t, errors.Is(ErrInvalidPayment, ErrOverPayment), "the parent does not match its refinements")

	assert.True(t, errors.Is(New(KindAlreadySettled, "settled"), ErrInvalidPayment))
	assert.False(t, errors.Is(InsufficientStock("short"), ErrInvalidState))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{InvalidState("x"), http.StatusUnprocessableEntity},
		{InsufficientStock("x"), http.StatusUnprocessableEntity},
		{New(KindOverPayment, "x"), http.StatusBadRequest},
		{New(KindAlreadyCancelled, "x"), http.StatusConflict},
		{Validation(nil), http.StatusBadRequest},
		{New(KindUnauthorized, "x"), http.StatusUnauthorized},
		{Internal(errors.New("db down"), "x"), http.StatusInternalServerError},
		{&Error{Kind: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status(), string(tt.err.Kind))
		assert.Equal(t, tt.want < 500, tt.err.ClientFault(), string(tt.err.Kind))
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "product abc not found", NotFound("product %s not found", "abc").Error())
	assert.Equal(t, string(KindConflict), ErrConflict.Error())

	cause := errors.New("connection refused")
	err := Internal(cause, "failed to load products")
	assert.Equal(t, "failed to load products: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	v := Validation([]FieldError{{Field: "Quantity", Tag: "gt", Param: "0"}})
	assert.Equal(t, "validation failed: field 'Quantity' failed on tag 'gt'", v.Error())
	assert.Len(t, v.Fields, 1)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("create sale: %w", InsufficientStock("only 2 sak left"))
	assert.Equal(t, KindInsufficientStock, As(wrapped).Kind)

	plain := As(errors.New("boom"))
	assert.Equal(t, KindInternal, plain.Kind)
	assert.False(t, plain.ClientFault())
}
