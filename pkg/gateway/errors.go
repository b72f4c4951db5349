package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for gateway calls. Error classification:
//   - ErrInvalidConfiguration: the client cannot be built (fail fast)
//   - ErrRequestFailed: the server answered with a non-2xx status (*Error)
//   - ErrUnavailable: the request never got a response
//   - ErrInvalidResponse: the response body could not be decoded
var (
	ErrInvalidConfiguration = errors.New("gateway: invalid configuration")
	ErrInvalidArgument      = errors.New("gateway: invalid argument")
	ErrRequestFailed        = errors.New("gateway: request failed")
	ErrUnavailable          = errors.New("gateway: service unavailable")
	ErrTimeout              = errors.New("gateway: request timeout")
	ErrInvalidResponse      = errors.New("gateway: invalid response")
)

// Error is returned for non-2xx responses.
type Error struct {
	Method    string
	Path      string
	Status    int
	Message   string
	RequestID string // X-Request-ID sent with the request
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return ErrRequestFailed
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an *Error.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnavailable reports whether the request failed before a response arrived.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
