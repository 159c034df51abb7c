package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized matches any 401/403 rejection. The license credential
	// has already been cleared when it is returned.
	ErrUnauthorized = errors.New("license key rejected")

	// ErrNetwork matches transport failures where no HTTP response arrived
	ErrNetwork = errors.New("network error")
)

// UnauthorizedError is returned for HTTP 401 and 403
type UnauthorizedError struct {
	StatusCode int
	Detail     string
}

func (e *UnauthorizedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unauthorized (HTTP %d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("unauthorized (HTTP %d)", e.StatusCode)
}

// Is lets errors.Is(err, ErrUnauthorized) match
func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

// HTTPError is returned for any other non-2xx response, and for 2xx
// responses whose body cannot be decoded.
type HTTPError struct {
	StatusCode int
	Detail     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend error (HTTP %d): %s", e.StatusCode, e.Detail)
}

// NetworkError wraps a transport failure such as a refused connection,
// DNS failure or a proxy/CORS rejection before any response.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNetwork) match
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var ue *UnauthorizedError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
