package notifytest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/requestid"
	"github.com/dmitrymomot/notifykit/pkg/sse"
)

// Call is a recorded REST request.
type Call struct {
	Method    string
	Path      string
	Query     url.Values
	Header    http.Header
	Body      []byte
	RequestID string
}

// Subscription is a recorded stream request.
type Subscription struct {
	UserID        string
	DepartmentIDs []string
	LastEventID   string
	Header        http.Header
	RawQuery      string
}

type failure struct {
	status  int
	message string
}

type frame struct {
	sse.Event
	comment string
}

type subscriber struct {
	sub  Subscription
	ch   chan frame
	done chan struct{}
	once sync.Once
}

func (s *subscriber) drop() {
	s.once.Do(func() { close(s.done) })
}

// Server is a fake notification backend.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	notifications map[string][]notifications.Notification // userID -> newest first
	departments   map[string][]notifications.Notification
	calls         []Call
	subscriptions []Subscription
	subscribers   map[*subscriber]struct{}
	rejectStreams int
	rejectStatus  int
	failures      map[string][]failure // "METHOD /path" -> queued failures
	queues        json.RawMessage
	connected     bool
	subscribed    chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithConnectedEvent makes every stream start with a "connected" event, the
// way the production backend greets new subscribers.
func WithConnectedEvent() Option {
	return func(s *Server) {
		s.connected = true
	}
}

// WithQueues sets the document returned by /admin/queues.
func WithQueues(doc json.RawMessage) Option {
	return func(s *Server) {
		s.queues = doc
	}
}

// NewServer starts a fake backend.
func NewServer(opts ...Option) *Server {
	s := &Server{
		notifications: make(map[string][]notifications.Notification),
		departments:   make(map[string][]notifications.Notification),
		subscribers:   make(map[*subscriber]struct{}),
		failures:      make(map[string][]failure),
		queues:        json.RawMessage(`{}`),
		subscribed:    make(chan struct{}, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// Close drops every stream and shuts the server down.
func (s *Server) Close() {
	s.DropConnections()
	s.Server.Close()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(s.record)

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/subscribe", s.handleSubscribe)
		r.Get("/all", s.handleListAll)
		r.Post("/clear-all", s.handleClearAll)
		r.Post("/broadcast", s.handleBroadcast)
		r.Post("/users", s.handleSendToUsers)
		r.Post("/departments", s.handleSendToDepartments)

		r.Route("/user/{userID}", func(r chi.Router) {
			r.Post("/", s.handleSendToUser)
			r.Get("/history", s.handleHistory)
			r.Get("/stats", s.handleStats)
			r.Get("/unread-count", s.handleUnreadCount)
			r.Post("/mark-all-read", s.handleMarkAllRead)
			r.Post("/delete-old", s.handleDeleteOld)
		})

		r.Route("/department/{departmentID}", func(r chi.Router) {
			r.Post("/", s.handleSendToDepartment)
			r.Get("/history", s.handleDepartmentHistory)
			r.Get("/subscribers", s.handleDepartmentSubscribers)
		})

		r.Post("/{notificationID}/read", s.handleMarkRead)
		r.Post("/{notificationID}/delete", s.handleDelete)
	})

	r.Get("/admin/queues", s.handleQueues)
	return r
}

// record stores the call and serves an injected failure if one is queued.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/notifications/subscribe" {
			next.ServeHTTP(w, r)
			return
		}

		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		key := r.Method + " " + r.URL.Path

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.Query(),
			Header:    r.Header.Clone(),
			Body:      body,
			RequestID: requestid.FromContext(r.Context()),
		})
		var f *failure
		if q := s.failures[key]; len(q) > 0 {
			f = &q[0]
			s.failures[key] = q[1:]
		}
		s.mu.Unlock()

		if f != nil {
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetHistory replaces the stored notifications of a user. Items are kept in
// the order given, which the history endpoint returns as-is.
func (s *Server) SetHistory(userID string, items ...notifications.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[userID] = slices.Clone(items)
}

// SetDepartmentHistory replaces the stored notifications of a department.
func (s *Server) SetDepartmentHistory(departmentID string, items ...notifications.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments[departmentID] = slices.Clone(items)
}

// Stored returns the notifications currently stored for a user.
func (s *Server) Stored(userID string) []notifications.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications[userID])
}

// FailNext makes the next request to method+path fail with status.
// Calls queue up, so FailNext twice fails two requests.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, message: message})
}

// RejectStreams makes the next n subscribe requests fail with status.
func (s *Server) RejectStreams(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectStreams = n
	s.rejectStatus = status
}

// Calls returns every recorded REST call.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// CallsTo returns the recorded calls matching method and path.
func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Subscriptions returns every accepted or rejected stream request in order.
func (s *Server) Subscriptions() []Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.subscriptions)
}

// Subscribers returns the number of open streams.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// WaitSubscribers blocks until at least n streams are open or fails the test
// after five seconds.
func (s *Server) WaitSubscribers(tb testing.TB, n int) {
	tb.Helper()
	deadline := time.After(5 * time.Second)
	for s.Subscribers() < n {
		select {
		case <-s.subscribed:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			tb.Fatalf("notifytest: timed out waiting for %d subscribers, have %d", n, s.Subscribers())
			return
		}
	}
}

// Publish stores n for userID and pushes it as a named "notification" event
// to that user's open streams. Empty ID and CreatedAt are filled in.
func (s *Server) Publish(userID string, n notifications.Notification) notifications.Notification {
	n = fill(n, userID)

	s.mu.Lock()
	s.notifications[userID] = append([]notifications.Notification{n}, s.notifications[userID]...)
	s.mu.Unlock()

	s.pushNotification(func(sub Subscription) bool { return sub.UserID == userID }, "notification", n)
	return n
}

// PublishToDepartment pushes n to every stream subscribed to departmentID.
func (s *Server) PublishToDepartment(departmentID string, n notifications.Notification) notifications.Notification {
	n = fill(n, "")

	s.mu.Lock()
	s.departments[departmentID] = append([]notifications.Notification{n}, s.departments[departmentID]...)
	s.mu.Unlock()

	s.pushNotification(func(sub Subscription) bool {
		return slices.Contains(sub.DepartmentIDs, departmentID)
	}, "notification", n)
	return n
}

// PublishRaw pushes an arbitrary event to every open stream.
func (s *Server) PublishRaw(event, data string) {
	s.push(func(Subscription) bool { return true }, frame{Event: sse.Event{ID: uuid.NewString(), Name: event, Data: data}})
}

// Heartbeat sends a keep-alive comment to every open stream.
func (s *Server) Heartbeat() {
	s.push(func(Subscription) bool { return true }, frame{comment: "heartbeat"})
}

// DropConnections closes every open stream from the server side.
func (s *Server) DropConnections() {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.drop()
	}
}

func (s *Server) pushNotification(match func(Subscription) bool, event string, n notifications.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		panic(fmt.Sprintf("notifytest: marshal notification: %v", err))
	}
	s.push(match, frame{Event: sse.Event{ID: uuid.NewString(), Name: event, Data: string(data)}})
}

func (s *Server) push(match func(Subscription) bool, f frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subscribers {
		if !match(sub.sub) {
			continue
		}
		select {
		case sub.ch <- f:
		case <-sub.done:
		}
	}
}

func fill(n notifications.Notification, userID string) notifications.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.UserID == "" {
		n.UserID = userID
	}
	if n.Type == "" {
		n.Type = notifications.TypeInfo
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return n
}
