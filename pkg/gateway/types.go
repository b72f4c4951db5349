package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Message is the payload of the send and broadcast endpoints.
// An empty ID is filled with a random UUID so retries can be deduplicated
// server-side.
type Message struct {
	ID      string             `json:"id,omitempty"`
	Type    notifications.Type `json:"type"`
	Title   string             `json:"title"`
	Message string             `json:"message"`
	Data    json.RawMessage    `json:"data,omitempty"`
	Icon    string             `json:"icon,omitempty"`
}

// Validate checks the fields the server requires.
func (m Message) Validate() error {
	if m.Title == "" && m.Message == "" {
		return fmt.Errorf("%w: title or message is required", ErrInvalidArgument)
	}
	if m.Type != "" && !m.Type.IsValid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidArgument, notifications.ErrUnknownType, m.Type)
	}
	return nil
}

type usersMessage struct {
	Message
	UserIDs []string `json:"userIds"`
}

type departmentsMessage struct {
	Message
	DepartmentIDs []string `json:"departmentIds"`
}

// decodeList accepts a bare JSON array or an object wrapping it in "data"
// or "notifications".
func decodeList(raw []byte) ([]notifications.Notification, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []notifications.Notification{}, nil
	}

	if raw[0] == '[' {
		var list []notifications.Notification
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		return list, nil
	}

	var wrapped struct {
		Data          []notifications.Notification `json:"data"`
		Notifications []notifications.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	switch {
	case len(wrapped.Data) > 0:
		return wrapped.Data, nil
	case len(wrapped.Notifications) > 0:
		return wrapped.Notifications, nil
	}
	return []notifications.Notification{}, nil
}

// decodeCount reads the first non-zero of the given keys, or a bare number.
func decodeCount(raw []byte, keys ...string) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	for _, k := range keys {
		v, ok := fields[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, &n); err != nil {
			return 0, fmt.Errorf("%w: field %q: %w", ErrInvalidResponse, k, err)
		}
		if n != 0 {
			return n, nil
		}
	}
	return 0, nil
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	// sanitize for safe logging
	msg := string(bytes.ReplaceAll(bytes.TrimSpace(body), []byte("\n"), []byte(" ")))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}
