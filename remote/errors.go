package remote

import "errors"

var (
	// ErrInvalidEndpoint indicates a null or empty endpoint string.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	// ErrInvalidMaxAttempts indicates a retry call with maxAttempts <= 0.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
