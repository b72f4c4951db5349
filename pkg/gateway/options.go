package gateway

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestResult describes a completed gateway call.
type RequestResult struct {
	Operation string
	Method    string
	Path      string
	RequestID string
	Status    int
	Duration  time.Duration
	Err       error
}

// RequestHook is called after every request, successful or not.
type RequestHook func(RequestResult)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithCredentials sets the x-app-key and x-app-secret headers.
// Both values must be non-empty for either header to be sent.
func WithCredentials(appKey, appSecret string) Option {
	return func(c *Client) {
		c.appKey = appKey
		c.appSecret = appSecret
	}
}

// WithTimeout bounds each request. Default is 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if key != "" && value != "" {
			c.headers[key] = value
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnRequest registers a hook invoked after each request.
// Useful for metrics.
func WithOnRequest(hook RequestHook) Option {
	return func(c *Client) {
		c.onRequest = hook
	}
}
