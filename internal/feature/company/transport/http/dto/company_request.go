// Package dto defines data transfer objects for the company HTTP API.
package dto

// CreateCompanyReq represents the request body for POST /companies.
// It uses Gin's binding tags for validation.
type CreateCompanyReq struct {
	Name            string  `json:"name" binding:"required"`
	Symbol          string  `json:"symbol" binding:"required"`
	Currency        string  `json:"currency" binding:"required,len=3,uppercase"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	AvailableShares int64   `json:"available_shares" binding:"required,gt=0"`
}

// UpdateCompanyReq represents the request body for PUT /companies/:id.
// The quote currency is fixed at creation time and cannot be replaced here.
type UpdateCompanyReq struct {
	Name            string  `json:"name" binding:"required"`
	Symbol          string  `json:"symbol" binding:"required"`
	Price           float64 `json:"price" binding:"required,gt=0"`
	AvailableShares int64   `json:"available_shares" binding:"gte=0"`
}

// PatchCompanyReq represents the request body for PATCH /companies/:id.
// すべてのフィールドは任意で、nil のフィールドは変更されません。
type PatchCompanyReq struct {
	Name            *string  `json:"name" binding:"omitempty,min=1"`
	Symbol          *string  `json:"symbol" binding:"omitempty,min=1"`
	Price           *float64 `json:"price" binding:"omitempty,gt=0"`
	AvailableShares *int64   `json:"available_shares" binding:"omitempty,gte=0"`
}

// ListCompaniesQuery binds the query string of GET /companies.
type ListCompaniesQuery struct {
	Name        string   `form:"name"`
	Currency    string   `form:"currency" binding:"omitempty,len=3,uppercase"`
	Price       *float64 `form:"price"`
	PriceGT     *float64 `form:"price_gt"`
	PriceLT     *float64 `form:"price_lt"`
	Available   *int64   `form:"available"`
	AvailableGT *int64   `form:"available_gt"`
	AvailableLT *int64   `form:"available_lt"`
	SortPrice   string   `form:"sort_price" binding:"omitempty,oneof=asc desc"`
	SortDate    string   `form:"sort_date" binding:"omitempty,oneof=asc desc"`
}
