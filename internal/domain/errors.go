package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested catalog record does not exist
	ErrNotFound = errors.New("catalog record not found")

	// ErrServerOffline indicates the remote API is unreachable
	ErrServerOffline = errors.New("remote API is unreachable")

	// ErrAuthFailed indicates the configured credential was rejected
	ErrAuthFailed = errors.New("access token is invalid")

	// ErrDecode indicates a response body did not match the expected shape
	ErrDecode = errors.New("unexpected response shape")

	// ErrInvalidRequest indicates a request could not be built (bad base URL, empty query)
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidResponse indicates a chat reply was missing an expected field
	ErrInvalidResponse = errors.New("invalid chat response")
)

// StatusError is returned for non-2xx responses that have no dedicated sentinel.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}
