package client_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/client"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/transport"
)

// recorder keeps a shared, ordered log of calls made by the fakes.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeHandle struct {
	mu     sync.Mutex
	closed bool
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *fakeHandle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

type openCall struct {
	url      string
	handlers transport.Handlers
	handle   *fakeHandle
	opts     int
}

type fakeDialer struct {
	rec   *recorder
	mu    sync.Mutex
	opens []openCall
	err   error
}

func (d *fakeDialer) Open(_ context.Context, url string, h transport.Handlers, opts ...transport.OpenOption) (transport.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rec != nil {
		d.rec.add("open:" + url)
	}
	if d.err != nil {
		err := d.err
		d.err = nil
		return nil, err
	}
	call := openCall{url: url, handlers: h, handle: &fakeHandle{}, opts: len(opts)}
	d.opens = append(d.opens, call)
	return call.handle, nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.opens)
}

func (d *fakeDialer) last() openCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens[len(d.opens)-1]
}

func (d *fakeDialer) at(i int) openCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens[i]
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *fakeTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// fire runs the callback regardless of Stop, like a timer that already
// started before Stop was called.
func (t *fakeTimer) fire() {
	t.fn()
}

type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) client.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *fakeScheduler) last() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timers[len(s.timers)-1]
}

func (s *fakeScheduler) delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.timers))
	for i, t := range s.timers {
		out[i] = t.delay
	}
	return out
}

var errGateway = errors.New("gateway down")

type fakeGateway struct {
	rec     *recorder
	mu      sync.Mutex
	history []notifications.Notification
	err     error
}

func (g *fakeGateway) record(call string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rec != nil {
		g.rec.add(call)
	}
	return g.err
}

func (g *fakeGateway) GetHistory(_ context.Context, userID string) ([]notifications.Notification, error) {
	if err := g.record("history:" + userID); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]notifications.Notification(nil), g.history...), nil
}

func (g *fakeGateway) MarkAsRead(_ context.Context, id string) error {
	return g.record("read:" + id)
}

func (g *fakeGateway) MarkAllAsRead(_ context.Context, userID string) error {
	return g.record("read-all:" + userID)
}

func (g *fakeGateway) DeleteNotification(_ context.Context, id string) error {
	return g.record("delete:" + id)
}

func (g *fakeGateway) fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

type harness struct {
	rec       *recorder
	dialer    *fakeDialer
	scheduler *fakeScheduler
	gateway   *fakeGateway
	client    *client.Client
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.APIURL = "http://x"
	cfg.UserID = "u1"
	return cfg
}

func newHarness(cfg config.Config, opts ...client.Option) (*harness, error) {
	rec := &recorder{}
	h := &harness{
		rec:       rec,
		dialer:    &fakeDialer{rec: rec},
		scheduler: &fakeScheduler{},
		gateway:   &fakeGateway{rec: rec},
	}
	base := []client.Option{
		client.WithLogger(logger.Discard()),
		client.WithDialer(h.dialer),
		client.WithScheduler(h.scheduler),
		client.WithGateway(h.gateway),
	}
	c, err := client.New(cfg, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	h.client = c
	return h, nil
}

func notification(id string, read bool) notifications.Notification {
	return notifications.Notification{
		ID:        id,
		UserID:    "u1",
		Type:      notifications.TypeInfo,
		Title:     "title " + id,
		Message:   "message " + id,
		Read:      read,
		CreatedAt: time.Now(),
	}
}

func streamErr() error {
	return &transport.TransportError{Op: transport.OpRead, URL: "http://x", Err: transport.ErrStreamClosed}
}
