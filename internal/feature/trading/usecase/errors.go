// Package usecase implements the business logic for the trading feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when the trading user no longer exists.
	// A valid token does not guarantee the account still does.
	ErrUserNotFound = errors.New("user not found")

	// ErrCompanyNotFound is returned when the traded company does not exist.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrInsufficientShares is returned when a buy asks for more shares than
	// the company has available.
	ErrInsufficientShares = errors.New("not enough company shares")

	// ErrInsufficientHoldings is returned when a sell asks for more shares
	// than the user holds, including the case where no position exists.
	ErrInsufficientHoldings = errors.New("not enough shares")

	// ErrTradeConflict is returned when a trade keeps losing the race against
	// concurrent writers and the bounded retry budget is exhausted.
	ErrTradeConflict = errors.New("trade conflicted with a concurrent update")

	// ErrInvalidQuantity is returned when the requested quantity is not a
	// positive integer.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)
