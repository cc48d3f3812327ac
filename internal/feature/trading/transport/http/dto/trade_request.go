// Package dto defines data transfer objects for the trading feature's HTTP transport layer.
package dto

// TradeReq represents the request body for the /shares/buy and /shares/sell
// endpoints. The quantity must be a positive integer.
type TradeReq struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

// PositionItem is one holding in the holdings response.
type PositionItem struct {
	CompanyID uint  `json:"company_id"`
	Quantity  int64 `json:"quantity"`
}
