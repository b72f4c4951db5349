package notifytest

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/sse"
)

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sub := Subscription{
		UserID:      q.Get("userId"),
		LastEventID: r.Header.Get("Last-Event-ID"),
		Header:      r.Header.Clone(),
		RawQuery:    r.URL.RawQuery,
	}
	if raw := q.Get("departmentIds"); raw != "" {
		for id := range strings.SplitSeq(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				sub.DepartmentIDs = append(sub.DepartmentIDs, id)
			}
		}
	}

	s.mu.Lock()
	s.subscriptions = append(s.subscriptions, sub)
	reject := 0
	if s.rejectStreams > 0 {
		s.rejectStreams--
		reject = s.rejectStatus
	}
	s.mu.Unlock()

	if reject != 0 {
		writeJSON(w, reject, map[string]string{"message": http.StatusText(reject)})
		return
	}
	if sub.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "userId is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if s.connected {
		data, _ := json.Marshal(map[string]string{"userId": sub.UserID})
		_ = sse.Write(w, sse.Event{Name: "connected", Data: string(data)})
	}
	flusher.Flush()

	client := &subscriber{
		sub:  sub,
		ch:   make(chan frame, 16),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.subscribers[client] = struct{}{}
	s.mu.Unlock()

	select {
	case s.subscribed <- struct{}{}:
	default:
	}

	defer func() {
		// close done before taking the lock so a blocked push can return
		client.drop()
		s.mu.Lock()
		delete(s.subscribers, client)
		s.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-client.done:
			return
		case f := <-client.ch:
			var err error
			if f.comment != "" {
				err = sse.WriteComment(w, f.comment)
			} else {
				err = sse.Write(w, f.Event)
			}
			if err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Stored(chi.URLParam(r, "userID")))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	items := s.Stored(chi.URLParam(r, "userID"))
	stats := notifications.Stats{Total: len(items), ByType: make(map[notifications.Type]int)}
	for _, n := range items {
		if n.Read {
			stats.Read++
		} else {
			stats.Unread++
		}
		stats.ByType[n.Type]++
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	unread := 0
	for _, n := range s.Stored(chi.URLParam(r, "userID")) {
		if !n.Read {
			unread++
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"unreadCount": unread})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")
	found := s.update(func(items []notifications.Notification) []notifications.Notification {
		for i := range items {
			if items[i].ID == id {
				items[i].Read = true
			}
		}
		return items
	}, id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Notification not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "notificationID")
	found := s.update(func(items []notifications.Notification) []notifications.Notification {
		return slices.DeleteFunc(items, func(n notifications.Notification) bool { return n.ID == id })
	}, id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Notification not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// update applies fn to every user's list that contains id.
func (s *Server) update(fn func([]notifications.Notification) []notifications.Notification, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for user, items := range s.notifications {
		if !slices.ContainsFunc(items, func(n notifications.Notification) bool { return n.ID == id }) {
			continue
		}
		found = true
		s.notifications[user] = fn(items)
	}
	return found
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	s.mu.Lock()
	items := s.notifications[userID]
	for i := range items {
		items[i].Read = true
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteOld(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	s.mu.Lock()
	before := len(s.notifications[userID])
	s.notifications[userID] = slices.DeleteFunc(s.notifications[userID], func(n notifications.Notification) bool {
		return n.Read
	})
	deleted := before - len(s.notifications[userID])
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

type sendRequest struct {
	ID            string             `json:"id"`
	Type          notifications.Type `json:"type"`
	Title         string             `json:"title"`
	Message       string             `json:"message"`
	Data          json.RawMessage    `json:"data,omitempty"`
	Icon          string             `json:"icon,omitempty"`
	UserIDs       []string           `json:"userIds,omitempty"`
	DepartmentIDs []string           `json:"departmentIds,omitempty"`
}

func (req sendRequest) notification() notifications.Notification {
	return notifications.Notification{
		ID:      req.ID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
		Data:    req.Data,
		Icon:    req.Icon,
	}
}

func decodeSend(w http.ResponseWriter, r *http.Request) (sendRequest, bool) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON body"})
		return req, false
	}
	if req.Title == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title and message are required"})
		return req, false
	}
	return req, true
}

func (s *Server) handleSendToUser(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSend(w, r)
	if !ok {
		return
	}
	n := s.Publish(chi.URLParam(r, "userID"), req.notification())
	writeJSON(w, http.StatusCreated, map[string]string{"id": n.ID})
}

func (s *Server) handleSendToUsers(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSend(w, r)
	if !ok {
		return
	}
	if len(req.UserIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "userIds are required"})
		return
	}
	var id string
	for _, userID := range req.UserIDs {
		id = s.Publish(userID, req.notification()).ID
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleSendToDepartment(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSend(w, r)
	if !ok {
		return
	}
	n := s.PublishToDepartment(chi.URLParam(r, "departmentID"), req.notification())
	writeJSON(w, http.StatusCreated, map[string]string{"id": n.ID})
}

func (s *Server) handleSendToDepartments(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSend(w, r)
	if !ok {
		return
	}
	if len(req.DepartmentIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "departmentIds are required"})
		return
	}
	var id string
	for _, departmentID := range req.DepartmentIDs {
		id = s.PublishToDepartment(departmentID, req.notification()).ID
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSend(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	users := make(map[string]struct{})
	for sub := range s.subscribers {
		users[sub.sub.UserID] = struct{}{}
	}
	s.mu.Unlock()

	n := fill(req.notification(), "")
	for userID := range users {
		s.Publish(userID, n)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": n.ID, "recipients": len(users)})
}

func (s *Server) handleDepartmentHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := slices.Clone(s.departments[chi.URLParam(r, "departmentID")])
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (s *Server) handleDepartmentSubscribers(w http.ResponseWriter, r *http.Request) {
	departmentID := chi.URLParam(r, "departmentID")

	s.mu.Lock()
	count := 0
	for sub := range s.subscribers {
		if slices.Contains(sub.sub.DepartmentIDs, departmentID) {
			count++
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var all []notifications.Notification
	for _, items := range s.notifications {
		all = append(all, items...)
	}
	s.mu.Unlock()

	slices.SortStableFunc(all, func(a, b notifications.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	writeJSON(w, http.StatusOK, map[string]any{"data": all})
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	clear(s.notifications)
	clear(s.departments)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleQueues(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc := s.queues
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
