// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered user in the system.
// It contains authentication credentials and metadata for user management.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Username is the user's handle. It must be unique across all users.
	Username string `gorm:"uniqueIndex;size:64;not null"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the hashed password for the user.
	// This should never store plaintext passwords.
	Password string `gorm:"size:255;not null"`

	// FullName is the user's display name. Optional.
	FullName string `gorm:"size:255"`

	// Disabled marks the account as inactive. Disabled users cannot
	// log in or trade.
	Disabled bool `gorm:"not null;default:false"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}
