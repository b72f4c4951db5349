package transport

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures an HTTPDialer.
type Option func(*HTTPDialer)

// WithHTTPClient sets the client used for stream requests.
// The client must not set a Timeout, which would cut long-lived streams.
func WithHTTPClient(client *http.Client) Option {
	return func(d *HTTPDialer) {
		if client != nil {
			d.client = client
		}
	}
}

// WithHeader adds a header to every stream request.
func WithHeader(key, value string) Option {
	return func(d *HTTPDialer) {
		if key != "" && value != "" {
			d.headers[key] = value
		}
	}
}

// WithHeaders adds multiple headers to every stream request.
func WithHeaders(headers map[string]string) Option {
	return func(d *HTTPDialer) {
		for k, v := range headers {
			if k != "" && v != "" {
				d.headers[k] = v
			}
		}
	}
}

// WithIdleTimeout fails a stream that delivers no bytes for d.
// Zero disables the watchdog.
func WithIdleTimeout(d time.Duration) Option {
	return func(dd *HTTPDialer) {
		if d >= 0 {
			dd.idleTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *HTTPDialer) {
		if l != nil {
			d.logger = l
		}
	}
}
