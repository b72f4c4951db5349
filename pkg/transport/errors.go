package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport is the base error for every stream failure.
	ErrTransport = errors.New("transport: stream failed")

	ErrInvalidURL       = errors.New("transport: invalid url")
	ErrMissingUserID    = errors.New("transport: user id is required")
	ErrUnexpectedStatus = errors.New("transport: unexpected status code")
	ErrContentType      = errors.New("transport: unexpected content type")
	ErrStreamClosed     = errors.New("transport: stream closed by server")
	ErrIdleTimeout      = errors.New("transport: stream idle timeout")
)

// Operations reported in TransportError.Op.
const (
	OpDial = "dial"
	OpOpen = "open"
	OpRead = "read"
)

// TransportError describes a stream that failed to open or dropped.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int // set when the server answered with a non-2xx status
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport: %s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// IsTransportError reports whether err came from a stream failure.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}
