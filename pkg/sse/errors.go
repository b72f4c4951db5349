package sse

import "errors"

// ErrInvalidEvent is returned by Write for events that cannot be framed.
var ErrInvalidEvent = errors.New("sse: invalid event")
