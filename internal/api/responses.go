// Package api defines response envelopes shared by all HTTP handlers.
package api

// ErrorResponse is the JSON body returned for any failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the JSON body returned for successful requests that
// carry no payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse is the JSON body returned on successful login.
type TokenResponse struct {
	Token string `json:"token"`
}
