// Package entity defines the domain entities for the company feature.
package entity

import "time"

// Company represents a listed company whose shares can be traded.
// Price is always quoted in Currency; AvailableShares is the remaining
// unsold inventory.
type Company struct {
	// ID is the unique identifier for the company.
	ID uint `gorm:"primaryKey"`

	// Name is the company's display name. It must be unique.
	Name string `gorm:"uniqueIndex;size:255;not null"`

	// Symbol is the ticker symbol. It must be unique.
	Symbol string `gorm:"uniqueIndex;size:16;not null"`

	// Currency is the ISO code of the quote currency, fixed at creation.
	Currency string `gorm:"size:3;not null"`

	// Price is the current share price in Currency.
	Price float64 `gorm:"not null"`

	// AvailableShares is the unsold share inventory. It is never negative.
	AvailableShares int64 `gorm:"not null;default:0"`

	// CreatedAt is the timestamp when the company was listed.
	CreatedAt time.Time

	// UpdatedAt is the timestamp of the last change, including repricing.
	UpdatedAt time.Time
}
