package model

import "errors"

// Error taxonomy for the order pipeline. Handlers map these to HTTP status
// codes with errors.Is; everything else surfaces as an internal error.
var (
	// ErrInvalidRequest covers malformed or missing fields and the per-order
	// quantity limits. Never retried.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized means the userId is not registered.
	ErrUnauthorized = errors.New("user not registered")

	// ErrNotFound covers a missing burger, topping or order. An order owned
	// by another user reports the same error as a missing one.
	ErrNotFound = errors.New("not found")

	// ErrTooManyActiveOrders is the per-user admission limit. Callers may
	// retry once an active order leaves the kitchen.
	ErrTooManyActiveOrders = errors.New("too many active orders")

	// ErrStoreUnavailable marks a failed backing-store operation.
	ErrStoreUnavailable = errors.New("store unavailable")
)
