// Package transport opens the notification event stream and turns it into
// callbacks.
//
// BuildURL derives the subscribe endpoint from the API base URL, the user id
// and the optional department ids. A Dialer opens that URL and reports
// progress through Handlers:
//
//	h, err := transport.NewHTTPDialer().Open(ctx, streamURL, transport.Handlers{
//		OnOpen:    func() { ... },
//		OnMessage: func(ev transport.Event) { ... },
//		OnError:   func(err error) { ... },
//	})
//	defer h.Close()
//
// OnOpen fires once the server has accepted the stream. OnMessage fires once
// per notification, in arrival order, from a single goroutine. OnError fires
// at most once per Open, with a *TransportError, after which the stream is
// dead and the caller decides whether to open a new one. Events other than
// unnamed, "message" and "notification" events are treated as keep-alives
// and reported to OnDiscard; so are payloads that fail to decode, which do
// not close the stream.
//
// The response body is parsed with github.com/tmaxmax/go-sse. Frames that
// carry no data, such as a bare id line, update the last event id without
// being dispatched.
//
// Handle.Close is idempotent. Once it returns, no further callbacks start.
package transport
