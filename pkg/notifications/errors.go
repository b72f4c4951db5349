package notifications

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is the base error for malformed stream payloads.
	ErrDecode = errors.New("notifications: malformed payload")

	// ErrMissingID is returned when a payload decodes but carries no id.
	ErrMissingID = errors.New("notification id is required")

	// ErrUnknownType is returned by ParseType for strings outside the known set.
	ErrUnknownType = errors.New("notifications: unknown type")
)

// DecodeError describes a payload that could not be turned into a Notification.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("notifications: decode payload %q: %v", e.Payload, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// IsDecodeError reports whether err was produced by Decode.
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrDecode)
}
