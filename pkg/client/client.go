package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/gateway"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/metrics"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/reconnect"
	"github.com/dmitrymomot/notifykit/pkg/transport"
)

// Gateway is the subset of the REST gateway the client uses.
// *gateway.Client satisfies it.
type Gateway interface {
	GetHistory(ctx context.Context, userID string) ([]notifications.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, notificationID string) error
}

// Client is a notification session for one user. All methods are safe for
// concurrent use.
type Client struct {
	cfg        config.Config
	url        string
	logger     *slog.Logger
	dialer     transport.Dialer
	gateway    Gateway
	scheduler  Scheduler
	metrics    *metrics.Metrics
	feedBuffer int
	jitter     float64

	store     *notifications.Store
	feed      *feed
	observers observers

	ctx    context.Context
	cancel context.CancelFunc

	// guarded by mu
	mu          sync.Mutex
	machine     *reconnect.Machine
	policy      *reconnect.Policy
	handle      transport.Handle
	timer       Timer
	generation  uint64
	lastErr     error
	lastEventID string
	closed      bool
}

// New validates cfg and builds a Client. It does not touch the network.
// Zero delays and timeouts take their defaults (see config.Config.WithDefaults).
// An invalid config is reported as a *config.ConfigError.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	streamURL, err := transport.BuildURL(cfg.APIURL, cfg.UserID, cfg.DepartmentIDs.Values())
	if err != nil {
		return nil, err
	}

	c := &Client{
		cfg:        cfg,
		url:        streamURL,
		logger:     slog.Default(),
		scheduler:  realScheduler{},
		feedBuffer: DefaultFeedBuffer,
		store:      notifications.NewStore(),
		machine:    reconnect.NewMachine(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.With(logger.Component("client"), logger.UserID(cfg.UserID))

	if c.dialer == nil {
		c.dialer = transport.NewHTTPDialer(
			transport.WithIdleTimeout(cfg.IdleTimeout),
			transport.WithLogger(c.logger),
		)
	}
	if c.gateway == nil {
		m := c.metrics
		gw, err := gateway.New(cfg.APIURL,
			gateway.WithCredentials(cfg.AppKey, cfg.AppSecret),
			gateway.WithTimeout(cfg.RequestTimeout),
			gateway.WithLogger(c.logger),
			gateway.WithOnRequest(func(r gateway.RequestResult) {
				m.ObserveRequest(r.Operation, r.Status, r.Duration)
			}),
		)
		if err != nil {
			return nil, err
		}
		c.gateway = gw
	}

	c.policy = &reconnect.Policy{
		AutoReconnect: cfg.AutoReconnect,
		MaxAttempts:   cfg.MaxReconnectAttempts,
		BaseDelay:     cfg.ReconnectDelay,
		MaxDelay:      cfg.MaxReconnectDelay,
		JitterFactor:  c.jitter,
	}
	c.policy.Reset()

	c.feed = newFeed(c.feedBuffer)
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.metrics.SetState(reconnect.Idle)

	return c, nil
}

// Activate hydrates the store from the gateway and connects when AutoConnect
// is enabled. A failed hydration is logged and does not stop the connect.
func (c *Client) Activate(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}

	if err := c.hydrate(ctx, false); err != nil {
		c.logger.WarnContext(ctx, "failed to load notification history", logger.Error(err))
	}

	if !c.cfg.AutoConnect {
		return nil
	}
	return c.Connect()
}

// Refresh replaces the store content with the server history. Unlike
// Activate, the gateway error is returned.
func (c *Client) Refresh(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	return c.hydrate(ctx, true)
}

func (c *Client) hydrate(ctx context.Context, replace bool) error {
	items, err := c.gateway.GetHistory(ctx, c.cfg.UserID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if replace {
		c.store.Clear()
	}
	c.store.Seed(items)
	c.metrics.SetUnread(c.store.UnreadCount())

	c.logger.DebugContext(ctx, "notification history loaded", slog.Int("count", len(items)))
	return nil
}

// Connect opens the stream, replacing any open or pending one. Failures are
// reported through OnError, never returned.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	c.stopTimerLocked()
	c.closeHandleLocked()
	c.policy.Reset()
	c.generation++
	gen := c.generation
	c.fireLocked(reconnect.EventConnect)
	c.metrics.ConnectAttempt()
	lastEventID := c.lastEventID
	c.mu.Unlock()

	c.dial(gen, lastEventID)
	return nil
}

// Disconnect closes the stream and cancels any pending reconnect.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	c.stopTimerLocked()
	c.closeHandleLocked()
	c.generation++
	c.fireLocked(reconnect.EventDisconnect)
	c.mu.Unlock()

	c.logger.Info("disconnected")
	c.observers.each(func(o Observer) { o.OnDisconnect() })
	return nil
}

// Close disconnects, clears the store and ends every feed. It is safe to
// call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	prev := c.machine.Current()
	c.stopTimerLocked()
	c.closeHandleLocked()
	c.generation++
	c.fireLocked(reconnect.EventDisconnect)
	c.store.Clear()
	c.metrics.SetUnread(0)
	c.mu.Unlock()

	c.cancel()
	c.feed.close()

	if prev != reconnect.Idle && prev != reconnect.Disconnected {
		c.observers.each(func(o Observer) { o.OnDisconnect() })
	}
	return nil
}

// Subscribe registers obs and returns a function that removes it.
func (c *Client) Subscribe(obs Observer) (unsubscribe func()) {
	if obs == nil {
		return func() {}
	}
	return c.observers.add(obs)
}

// Feed returns a channel of incoming notifications. The channel is closed
// when ctx is done or the client is closed. Notifications are dropped for a
// consumer whose buffer is full.
func (c *Client) Feed(ctx context.Context) <-chan notifications.Notification {
	return c.feed.subscribe(ctx)
}

func (c *Client) State() reconnect.State {
	return c.machine.Current()
}

func (c *Client) IsConnected() bool {
	return c.machine.Current() == reconnect.Connected
}

// Err returns the last stream error. It is cleared when a stream opens.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Attempts returns the number of reconnects scheduled since the last
// successful open.
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy.Attempts()
}

// LastEventID returns the id of the last event received on any stream.
func (c *Client) LastEventID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEventID
}

// Notifications returns a copy of the store, newest first.
func (c *Client) Notifications() []notifications.Notification {
	return c.store.List()
}

func (c *Client) UnreadCount() int {
	return c.store.UnreadCount()
}

// dial opens a stream for generation gen. It runs without the lock held so a
// dialer may signal synchronously.
func (c *Client) dial(gen uint64, lastEventID string) {
	var opts []transport.OpenOption
	if lastEventID != "" {
		opts = append(opts, transport.WithLastEventID(lastEventID))
	}

	c.logger.Debug("opening stream", logger.URL(c.url))
	h, err := c.dialer.Open(c.ctx, c.url, c.handlers(gen), opts...)
	if err != nil {
		var te *transport.TransportError
		if !errors.As(err, &te) {
			err = &transport.TransportError{Op: transport.OpDial, URL: c.url, Err: err}
		}
		c.handleError(gen, err)
		return
	}

	c.mu.Lock()
	if gen != c.generation || c.closed {
		c.mu.Unlock()
		_ = h.Close()
		return
	}
	c.handle = h
	c.mu.Unlock()
}

func (c *Client) handlers(gen uint64) transport.Handlers {
	return transport.Handlers{
		OnOpen:    func() { c.handleOpen(gen) },
		OnMessage: func(ev transport.Event) { c.handleMessage(gen, ev) },
		OnError:   func(err error) { c.handleError(gen, err) },
		OnDiscard: func(name string, err error) { c.handleDiscard(gen, name, err) },
	}
}

func (c *Client) handleOpen(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.closed {
		c.mu.Unlock()
		return
	}
	if !c.fireLocked(reconnect.EventOpen) {
		c.mu.Unlock()
		return
	}
	c.policy.Reset()
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Info("connected")
	c.observers.each(func(o Observer) { o.OnConnect() })
}

func (c *Client) handleMessage(gen uint64, ev transport.Event) {
	c.mu.Lock()
	if gen != c.generation || c.closed {
		c.mu.Unlock()
		return
	}
	if ev.ID != "" {
		c.lastEventID = ev.ID
	}
	c.store.Add(ev.Notification)
	c.metrics.Event(metrics.KindNotification)
	c.metrics.SetUnread(c.store.UnreadCount())
	c.mu.Unlock()

	c.logger.Debug("notification received",
		logger.NotificationID(ev.Notification.ID),
		logger.EventName(ev.Name),
	)

	n := ev.Notification
	c.observers.each(func(o Observer) { o.OnNotification(n) })
	if dropped := c.feed.publish(n); dropped > 0 {
		c.logger.Debug("feed subscribers too slow, notification dropped",
			logger.NotificationID(n.ID),
			slog.Int("dropped", dropped),
		)
	}
}

func (c *Client) handleDiscard(gen uint64, _ string, err error) {
	c.mu.Lock()
	stale := gen != c.generation || c.closed
	c.mu.Unlock()
	if stale {
		return
	}

	if err != nil {
		c.metrics.DecodeError()
		return
	}
	c.metrics.Event(metrics.KindKeepAlive)
}

func (c *Client) handleError(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.generation || c.closed {
		c.mu.Unlock()
		return
	}
	if !c.fireLocked(reconnect.EventFail) {
		c.mu.Unlock()
		return
	}

	c.closeHandleLocked()
	c.lastErr = err

	var te *transport.TransportError
	if errors.As(err, &te) {
		c.metrics.TransportError(te.Op)
	} else {
		c.metrics.TransportError("")
	}

	delay, ok := c.policy.Next()
	attempt := c.policy.Attempts()
	exhausted := !ok && c.policy.Exhausted()
	if ok {
		c.timer = c.scheduler.AfterFunc(delay, func() { c.retry(gen) })
		c.metrics.ReconnectScheduled(delay)
	} else if exhausted {
		c.metrics.ReconnectsExhausted()
	}
	c.mu.Unlock()

	switch {
	case ok:
		c.logger.Warn("stream failed, reconnect scheduled",
			logger.Error(err),
			logger.Attempt(attempt),
			logger.Delay(delay),
		)
	case exhausted:
		c.logger.Error("stream failed, reconnect attempts exhausted",
			logger.Error(err),
			logger.Attempt(attempt),
		)
	default:
		c.logger.Warn("stream failed", logger.Error(err))
	}

	c.observers.each(func(o Observer) { o.OnError(err) })
}

// retry runs on the scheduler. It is a no-op unless gen is still current and
// the session is still waiting in the error state.
func (c *Client) retry(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.closed || !c.machine.CanFire(reconnect.EventRetry) {
		c.mu.Unlock()
		return
	}

	c.timer = nil
	c.closeHandleLocked()
	c.generation++
	next := c.generation
	c.fireLocked(reconnect.EventRetry)
	c.metrics.ConnectAttempt()
	lastEventID := c.lastEventID
	c.mu.Unlock()

	c.dial(next, lastEventID)
}

// fireLocked applies ev and reports whether the transition happened.
func (c *Client) fireLocked(ev reconnect.Event) bool {
	from, err := c.machine.Fire(ev)
	if err != nil {
		c.logger.Debug("ignored connection event", logger.State(from), slog.String("event", ev.String()))
		return false
	}
	to := c.machine.Current()
	c.metrics.SetState(to)
	c.logger.Debug("connection state changed", logger.Transition(from, to))
	return true
}

func (c *Client) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) closeHandleLocked() {
	if c.handle != nil {
		_ = c.handle.Close()
		c.handle = nil
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
