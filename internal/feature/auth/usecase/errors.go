// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists is returned when attempting to create a user whose
	// username or email is already taken.
	ErrUserAlreadyExists = errors.New("username or email already exists")

	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserDisabled is returned when a deactivated account attempts to log in.
	ErrUserDisabled = errors.New("user account is disabled")
)
