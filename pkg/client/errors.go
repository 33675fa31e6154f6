package client

import (
	"fmt"

	"github.com/campushelp/faqrag/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery          = domain.ErrEmptyQuery
	ErrUpstreamUnavailable = domain.ErrUpstreamUnavailable
	ErrRecordNotFound      = domain.ErrRecordNotFound
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("faqrag: %s (%s, HTTP %d)", e.Message, e.Code, e.StatusCode)
}

// Unwrap maps known error codes back to domain sentinels.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "validation_failed":
		return ErrEmptyQuery
	case "upstream_unavailable":
		return ErrUpstreamUnavailable
	default:
		return nil
	}
}
