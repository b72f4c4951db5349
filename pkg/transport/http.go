package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	gosse "github.com/tmaxmax/go-sse"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// MaxEventSize bounds a single event on the stream. Larger events fail the
// read with bufio.ErrTooLong.
const MaxEventSize = 1 << 20

// HTTPDialer opens event streams over plain HTTP GET requests.
type HTTPDialer struct {
	client      *http.Client
	headers     map[string]string
	idleTimeout time.Duration
	logger      *slog.Logger
}

// NewHTTPDialer creates a dialer. Without WithHTTPClient it uses a client
// with no overall timeout, since streams stay open indefinitely.
func NewHTTPDialer(opts ...Option) *HTTPDialer {
	d := &HTTPDialer{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				MaxIdleConnsPerHost:   2,
				IdleConnTimeout:       90 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		headers: make(map[string]string),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open implements Dialer. The stream lives until ctx is done, the server
// drops it, or the returned handle is closed.
func (d *HTTPDialer) Open(ctx context.Context, streamURL string, h Handlers, opts ...OpenOption) (Handle, error) {
	if err := ValidateBaseURL(streamURL); err != nil {
		return nil, &TransportError{Op: OpDial, URL: streamURL, Err: err}
	}

	o := &openOptions{}
	for _, opt := range opts {
		opt(o)
	}

	streamCtx, cancel := context.WithCancelCause(ctx)
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, streamURL, nil)
	if err != nil {
		cancel(nil)
		return nil, &TransportError{Op: OpDial, URL: streamURL, Err: fmt.Errorf("%w: %w", ErrInvalidURL, err)}
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range d.headers {
		req.Header.Set(k, v)
	}
	if o.lastEventID != "" {
		req.Header.Set("Last-Event-ID", o.lastEventID)
	}

	s := &stream{
		url:    streamURL,
		cancel: cancel,
		done:   make(chan struct{}),
		h:      h,
		logger: d.logger.With(logger.Component("transport"), logger.URL(streamURL)),
	}
	go s.run(streamCtx, d.client, req, d.idleTimeout)

	return s, nil
}

type stream struct {
	url    string
	cancel context.CancelCauseFunc
	closed atomic.Bool
	once   sync.Once
	done   chan struct{}
	h      Handlers
	logger *slog.Logger
}

var errHandleClosed = errors.New("transport: handle closed")

// Close cancels the request and suppresses any further callbacks.
func (s *stream) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		s.cancel(errHandleClosed)
	})
	return nil
}

// Done is closed when the reader goroutine has exited.
func (s *stream) Done() <-chan struct{} {
	return s.done
}

func (s *stream) run(ctx context.Context, client *http.Client, req *http.Request, idle time.Duration) {
	defer close(s.done)

	resp, err := client.Do(req)
	if err != nil {
		s.fail(ctx, &TransportError{Op: OpDial, URL: s.url, Err: err})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain a little of the body so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024*64))
		s.fail(ctx, &TransportError{
			Op:         OpOpen,
			URL:        s.url,
			StatusCode: resp.StatusCode,
			Err:        ErrUnexpectedStatus,
		})
		return
	}

	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err != nil || mt != "text/event-stream" {
		s.fail(ctx, &TransportError{
			Op:         OpOpen,
			URL:        s.url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %q", ErrContentType, resp.Header.Get("Content-Type")),
		})
		return
	}

	if s.closed.Load() {
		return
	}
	s.logger.Debug("stream opened")
	s.h.open()

	body := io.Reader(resp.Body)
	if idle > 0 {
		w := newWatchdog(resp.Body, idle, func() { s.cancel(ErrIdleTimeout) })
		defer w.stop()
		body = w
	}

	for ev, err := range gosse.Read(body, &gosse.ReadConfig{MaxEventSize: MaxEventSize}) {
		if err != nil {
			s.fail(ctx, &TransportError{Op: OpRead, URL: s.url, Err: err})
			return
		}
		if s.closed.Load() {
			return
		}
		s.dispatch(ev)
	}

	// Read ends without an error on a clean EOF
	s.fail(ctx, &TransportError{Op: OpRead, URL: s.url, Err: ErrStreamClosed})
}

func (s *stream) dispatch(ev gosse.Event) {
	if !IsNotificationEvent(ev.Type) {
		s.logger.Debug("keep-alive event", logger.EventName(ev.Type))
		s.h.discard(ev.Type, nil)
		return
	}
	if ev.Data == "" {
		// id-only or event-only frames carry no payload
		return
	}

	n, err := notifications.Decode([]byte(ev.Data))
	if err != nil {
		s.logger.Warn("dropping malformed notification event",
			logger.EventName(ev.Type),
			logger.EventID(ev.LastEventID),
			logger.Error(err),
		)
		s.h.discard(ev.Type, err)
		return
	}

	s.h.message(Event{ID: ev.LastEventID, Name: ev.Type, Notification: n})
}

// fail reports err unless the handle was closed. A cancellation cause set by
// the idle watchdog replaces the generic context error.
func (s *stream) fail(ctx context.Context, err *TransportError) {
	if s.closed.Load() {
		return
	}
	if cause := context.Cause(ctx); errors.Is(cause, ErrIdleTimeout) {
		err.Err = ErrIdleTimeout
	}
	s.logger.Debug("stream failed", logger.Error(err))
	s.h.fail(err)
}

// watchdog cancels the stream when Read has not returned data for the
// configured duration.
type watchdog struct {
	r     io.Reader
	d     time.Duration
	timer *time.Timer
}

func newWatchdog(r io.Reader, d time.Duration, onIdle func()) *watchdog {
	return &watchdog{r: r, d: d, timer: time.AfterFunc(d, onIdle)}
}

func (w *watchdog) Read(p []byte) (int, error) {
	n, err := w.r.Read(p)
	if n > 0 {
		w.timer.Reset(w.d)
	}
	return n, err
}

func (w *watchdog) stop() {
	w.timer.Stop()
}
