package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTP client errors.
var (
	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrBodyTooLarge is returned when a response body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")
)

// StatusError reports a response with a non-success status code.
// Callers use errors.As to inspect the code.
type StatusError struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code returned by the server.
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s) for %s",
		e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
