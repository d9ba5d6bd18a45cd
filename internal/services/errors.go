package services

import "errors"

// Logical invariant violations are terminal for the call and surfaced to
// the caller as-is; nothing here is retried internally.
var (
	ErrQuantity = errors.New("quantity must be a positive number")

	ErrNotFound = errors.New("not found")

	// Stock ledger
	ErrProductNotFound         = errors.New("product not found")
	ErrProductInUse            = errors.New("product has order history")
	ErrInsufficientStock       = errors.New("not enough stock")
	ErrNoBlockedUnits          = errors.New("no blocked units to release")
	ErrInvalidRelease          = errors.New("release exceeds blocked quantity")
	ErrInsufficientReservation = errors.New("not enough blocked units for sale")

	// Cart pricer
	ErrOutOfStock   = errors.New("not enough stock")
	ErrItemNotFound = errors.New("item not found in cart")
	ErrCartNotFound = errors.New("cart not found")

	// Order assembler
	ErrCartEmpty        = errors.New("cart is empty")
	ErrOrderNotFound    = errors.New("order not found")
	ErrAlreadyPaid      = errors.New("order is already paid")
	ErrOrderNotPaid     = errors.New("order is not paid")
	ErrAlreadyDelivered = errors.New("order is already delivered")

	// Auth
	ErrBadCreds = errors.New("invalid email or password")
)
