package transport

import (
	"context"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Event is a decoded notification received on the stream.
type Event struct {
	// ID is the stream's last event id at the time of delivery.
	ID           string
	Name         string
	Notification notifications.Notification
}

// Handlers receives stream signals. Nil fields are skipped.
type Handlers struct {
	OnOpen    func()
	OnMessage func(Event)
	OnError   func(error)
	// OnDiscard reports events that were not surfaced: keep-alives and other
	// named events with a nil error, malformed payloads with a *notifications.DecodeError.
	OnDiscard func(name string, err error)
}

func (h Handlers) open() {
	if h.OnOpen != nil {
		h.OnOpen()
	}
}

func (h Handlers) message(ev Event) {
	if h.OnMessage != nil {
		h.OnMessage(ev)
	}
}

func (h Handlers) fail(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

func (h Handlers) discard(name string, err error) {
	if h.OnDiscard != nil {
		h.OnDiscard(name, err)
	}
}

// Handle is an open or opening stream.
type Handle interface {
	// Close stops the stream. It is idempotent.
	Close() error
}

// Dialer opens event streams.
type Dialer interface {
	// Open starts connecting to url and returns immediately. Connection
	// failures are reported through h.OnError rather than the returned error,
	// which is reserved for requests that cannot be built at all.
	Open(ctx context.Context, url string, h Handlers, opts ...OpenOption) (Handle, error)
}

type openOptions struct {
	lastEventID string
}

// OpenOption configures a single Open call.
type OpenOption func(*openOptions)

// WithLastEventID asks the server to replay events after id.
func WithLastEventID(id string) OpenOption {
	return func(o *openOptions) {
		o.lastEventID = id
	}
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, url string, h Handlers, opts ...OpenOption) (Handle, error)

func (f DialerFunc) Open(ctx context.Context, url string, h Handlers, opts ...OpenOption) (Handle, error) {
	return f(ctx, url, h, opts...)
}

// IsNotificationEvent reports whether events named name carry a notification payload.
func IsNotificationEvent(name string) bool {
	switch name {
	case "", "message", "notification":
		return true
	}
	return false
}
