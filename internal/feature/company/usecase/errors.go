// Package usecase implements the business logic for the company feature.
package usecase

import "errors"

var (
	// ErrCompanyNotFound is returned when no company exists for the given ID.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrCompanyAlreadyExists is returned when creating a company whose name
	// or symbol is already taken.
	ErrCompanyAlreadyExists = errors.New("company or symbol already exists")
)
