package client

import (
	"log/slog"

	"github.com/dmitrymomot/notifykit/pkg/metrics"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/transport"
)

// Option configures a Client.
type Option func(*Client)

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDialer replaces the HTTP stream dialer.
func WithDialer(d transport.Dialer) Option {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithGateway replaces the REST gateway built from the config.
func WithGateway(g Gateway) Option {
	return func(c *Client) {
		if g != nil {
			c.gateway = g
		}
	}
}

// WithScheduler replaces the timer source used for reconnect delays.
func WithScheduler(s Scheduler) Option {
	return func(c *Client) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithMetrics records connection and event metrics. The default gateway
// also reports its requests to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithFeedBuffer sets the channel capacity of each Feed subscriber.
func WithFeedBuffer(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.feedBuffer = n
		}
	}
}

// WithJitter spreads reconnect delays by ±factor.
func WithJitter(factor float64) Option {
	return func(c *Client) {
		if factor >= 0 && factor < 1 {
			c.jitter = factor
		}
	}
}

// WithObserver registers obs at construction.
func WithObserver(obs Observer) Option {
	return func(c *Client) {
		if obs != nil {
			c.observers.add(obs)
		}
	}
}

func WithOnNotification(fn func(notifications.Notification)) Option {
	return WithObserver(ObserverFuncs{Notification: fn})
}

func WithOnConnect(fn func()) Option {
	return WithObserver(ObserverFuncs{Connect: fn})
}

func WithOnDisconnect(fn func()) Option {
	return WithObserver(ObserverFuncs{Disconnect: fn})
}

func WithOnError(fn func(error)) Option {
	return WithObserver(ObserverFuncs{Error: fn})
}
