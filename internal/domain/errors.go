package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoActiveCart      = errors.New("no active cart")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidAddress    = errors.New("shipping address not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrAmountMismatch    = errors.New("payment amount does not match order total")
	ErrInvalidState      = errors.New("operation not allowed in current state")
	ErrPartialWrite      = errors.New("partial write detected")
	ErrConflict          = errors.New("conflicting concurrent write")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidInput      = errors.New("invalid input")
)
