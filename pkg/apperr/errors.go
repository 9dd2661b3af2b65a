package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jaypeewhat/ThriftStore/entity"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("invalid credentials")
	ErrSuspended     = errors.New("account suspended")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflict")
	ErrEmailTaken    = errors.New("email already registered")

	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrProductUnavailable = errors.New("product no longer available")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrOwnProduct         = errors.New("cannot buy your own listing")

	ErrEmptyMessage = errors.New("message is empty")
	ErrChatClosed   = errors.New("chat is closed for this order")

	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrOrderNotDelivered = errors.New("order is not delivered")
	ErrAlreadyRated      = errors.New("You have already rated this order")
	ErrAlreadyInCart     = errors.New("Item already in cart")
)

// InvalidTransitionError is returned by the order engine for illegal or stale moves.
type InvalidTransitionError struct {
	From entity.OrderStatus
	To   entity.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// UnavailableError lists the products that blocked a checkout.
type UnavailableError struct {
	Products []string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("products no longer available: %s", strings.Join(e.Products, ", "))
}

func (e *UnavailableError) Unwrap() error { return ErrProductUnavailable }

// ValidationError carries per-field problems for the client.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
