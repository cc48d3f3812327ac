package dto

import (
	"time"

	"broker_backend/internal/feature/company/domain/entity"
)

// CompanyItem は会社情報のレスポンスDTOです。
type CompanyItem struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	Currency        string  `json:"currency"`
	Price           float64 `json:"price"`
	AvailableShares int64   `json:"available_shares"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// FromEntity converts a domain company into its API representation.
func FromEntity(c *entity.Company) CompanyItem {
	return CompanyItem{
		ID:              c.ID,
		Name:            c.Name,
		Symbol:          c.Symbol,
		Currency:        c.Currency,
		Price:           c.Price,
		AvailableShares: c.AvailableShares,
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// FromEntities converts a slice of domain companies.
func FromEntities(cs []entity.Company) []CompanyItem {
	items := make([]CompanyItem, 0, len(cs))
	for i := range cs {
		items = append(items, FromEntity(&cs[i]))
	}
	return items
}
