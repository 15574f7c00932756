package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmptyCart          = errors.New("your cart is empty")
	ErrDuplicateReview    = errors.New("you have already reviewed this product for this order")
	ErrInvalidAssociation = errors.New("you cannot review this product for this order")
	ErrInvalidTransition  = errors.New("order status does not allow this action")
	ErrOrderNotPending    = errors.New("order not found or already processed")
	ErrPaymentUnavailable = errors.New("payment processor unavailable")
	ErrBadSignature       = errors.New("invalid payment notification signature")
)

// ValidationError reports a single malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Only %d available.", e.Name, e.Available)
}
