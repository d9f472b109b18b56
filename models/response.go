package models

// StatusResponse is the body envelope returned for every account and ledger
// outcome. The status field carries the API-level code (200, 301, 302, 303),
// independent of the HTTP status line.
type StatusResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// API-level status codes.
const (
	StatusOK                = 200
	StatusInvalidUsername   = 301
	StatusIncorrectPassword = 302
	StatusNotEnoughTokens   = 303
)
