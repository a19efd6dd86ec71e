// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// SaleResult is the envelope the sale ingestion endpoint answers with.
// Device clients only look at the HTTP status; Message is for humans.
type SaleResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func SaleFailure(msg string) *SaleResult {
	return &SaleResult{Success: false, Message: msg}
}
