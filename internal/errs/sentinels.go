// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across api/session/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing, invalid, or expired session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation indicates a client-side precondition failure; the
	// request never reached the network.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientFunds indicates the wallet balance does not cover the
	// computed total.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrEmptyCart indicates an operation that requires at least one cart line.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNoSession indicates no live session in either storage tier.
	ErrNoSession = errors.New("no valid session (login required)")
)
