// Package dto defines the wire format of the external exchange-rate feed.
package dto

// LatestResponse is the body of the feed's /latest endpoint.
type LatestResponse struct {
	Success bool               `json:"success"`
	Base    string             `json:"base"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
	Error   *FeedError         `json:"error,omitempty"`
}

// FeedError is the error object some feed responses carry instead of rates.
type FeedError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}
