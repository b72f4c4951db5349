// Package metrics exposes Prometheus collectors for stream connection health.
//
// A nil *Metrics is valid and records nothing, so components can call it
// unconditionally.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/notifykit/pkg/reconnect"
)

// Event kinds recorded by Event.
const (
	KindNotification = "notification"
	KindKeepAlive    = "keepalive"
	KindMalformed    = "malformed"
)

const defaultNamespace = "notifykit"

// Metrics holds the client collectors.
type Metrics struct {
	state               *prometheus.GaugeVec
	connectAttempts     prometheus.Counter
	reconnectsScheduled prometheus.Counter
	reconnectDelay      prometheus.Histogram
	reconnectsExhausted prometheus.Counter
	events              *prometheus.CounterVec
	decodeErrors        prometheus.Counter
	unread              prometheus.Gauge
	transportErrors     *prometheus.CounterVec
	gatewayRequests     *prometheus.CounterVec
	gatewayDuration     *prometheus.HistogramVec
}

type options struct {
	namespace   string
	constLabels prometheus.Labels
}

// Option configures collector naming.
type Option func(*options)

// WithNamespace replaces the default "notifykit" namespace.
func WithNamespace(ns string) Option {
	return func(o *options) {
		if ns != "" {
			o.namespace = ns
		}
	}
}

// WithConstLabels attaches labels to every collector, e.g. the user id of a
// process that runs several clients.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(o *options) {
		o.constLabels = labels
	}
}

// New creates the collectors and registers them on reg.
// It panics if registration fails, like promauto.
func New(reg prometheus.Registerer, opts ...Option) *Metrics {
	o := &options{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(o)
	}
	f := promauto.With(reg)

	return &Metrics{
		state: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   o.namespace,
			Subsystem:   "stream",
			Name:        "state",
			Help:        "Current connection state; 1 for the active state, 0 otherwise",
			ConstLabels: o.constLabels,
		}, []string{"state"}),
		connectAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "stream",
			Name:        "connect_attempts_total",
			Help:        "Total number of stream open attempts",
			ConstLabels: o.constLabels,
		}),
		reconnectsScheduled: f.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "stream",
			Name:        "reconnects_scheduled_total",
			Help:        "Total number of reconnects scheduled after a stream failure",
			ConstLabels: o.constLabels,
		}),
		reconnectDelay: f.NewHistogram(prometheus.HistogramOpts{
			Namespace:   o.namespace,
			Subsystem:   "stream",
			Name:        "reconnect_delay_seconds",
			Help:        "Backoff delay of scheduled reconnects in seconds",
			Buckets:     []float64{.5, 1, 2, 4, 8, 16, 30, 60},
			ConstLabels: o.constLabels,
		}),
		reconnectsExhausted: f.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "stream",
			Name:        "reconnects_exhausted_total",
			Help:        "Total number of failures that hit the reconnect attempt cap",
			ConstLabels: o.constLabels,
		}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "stream",
			Name:        "events_total",
			Help:        "Total number of stream events by kind",
			ConstLabels: o.constLabels,
		}, []string{"kind"}),
		decodeErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "stream",
			Name:        "decode_errors_total",
			Help:        "Total number of notification payloads that failed to decode",
			ConstLabels: o.constLabels,
		}),
		unread: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.namespace,
			Subsystem:   "store",
			Name:        "unread",
			Help:        "Number of unread notifications in the local store",
			ConstLabels: o.constLabels,
		}),
		transportErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "stream",
			Name:        "errors_total",
			Help:        "Total number of stream failures by operation",
			ConstLabels: o.constLabels,
		}, []string{"op"}),
		gatewayRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   "gateway",
			Name:        "requests_total",
			Help:        "Total number of gateway requests by operation and status code",
			ConstLabels: o.constLabels,
		}, []string{"op", "status"}),
		gatewayDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   o.namespace,
			Subsystem:   "gateway",
			Name:        "request_duration_seconds",
			Help:        "Gateway request duration in seconds",
			Buckets:     []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			ConstLabels: o.constLabels,
		}, []string{"op"}),
	}
}

// SetState marks s as the active connection state.
func (m *Metrics) SetState(s reconnect.State) {
	if m == nil {
		return
	}
	for _, st := range reconnect.States() {
		v := 0.0
		if st == s {
			v = 1
		}
		m.state.WithLabelValues(st.String()).Set(v)
	}
}

func (m *Metrics) ConnectAttempt() {
	if m == nil {
		return
	}
	m.connectAttempts.Inc()
}

func (m *Metrics) ReconnectScheduled(delay time.Duration) {
	if m == nil {
		return
	}
	m.reconnectsScheduled.Inc()
	m.reconnectDelay.Observe(delay.Seconds())
}

func (m *Metrics) ReconnectsExhausted() {
	if m == nil {
		return
	}
	m.reconnectsExhausted.Inc()
}

// Event counts a stream event of the given kind.
func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

// DecodeError counts a malformed payload; it is also recorded as a KindMalformed event.
func (m *Metrics) DecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
	m.events.WithLabelValues(KindMalformed).Inc()
}

func (m *Metrics) SetUnread(n int) {
	if m == nil {
		return
	}
	m.unread.Set(float64(n))
}

func (m *Metrics) TransportError(op string) {
	if m == nil {
		return
	}
	if op == "" {
		op = "unknown"
	}
	m.transportErrors.WithLabelValues(op).Inc()
}

// ObserveRequest records a gateway call. A zero status means the request
// never got a response.
func (m *Metrics) ObserveRequest(op string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := "none"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.gatewayRequests.WithLabelValues(op, code).Inc()
	m.gatewayDuration.WithLabelValues(op).Observe(d.Seconds())
}
