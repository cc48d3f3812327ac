// Package domain defines domain-level errors for the rates feature.
package domain

import "errors"

// Domain errors for exchange-rate operations.
// These errors represent business logic failures and should be handled appropriately by upper layers.
var (
	// ErrUnknownCurrency indicates that no exchange rate is stored for the
	// requested currency code.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrFeedUnavailable indicates that the external rate feed could not be
	// reached or answered with an error status. No stored rate is mutated
	// when this is returned.
	ErrFeedUnavailable = errors.New("rate feed unavailable")
)
