// Package entity defines the domain entities for the trading feature.
package entity

// Position is a user's holding of shares in one company.
// At most one row exists per (user, company) pair; a quantity of zero
// means the position is closed but the row is kept.
type Position struct {
	ID uint `gorm:"primaryKey"`

	// UserID references the owning user.
	UserID uint `gorm:"not null;uniqueIndex:position_user_company,priority:1"`

	// CompanyID references the company the shares belong to.
	CompanyID uint `gorm:"not null;uniqueIndex:position_user_company,priority:2"`

	// Quantity is the number of shares held. It is never negative.
	Quantity int64 `gorm:"not null;default:0"`
}
