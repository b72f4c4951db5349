package client

import "errors"

// ErrClosed is returned by operations on a closed Client.
var ErrClosed = errors.New("client: closed")
