package notifications

import (
	"encoding/json"
	"time"
)

// Type represents the notification type/severity.
type Type string

const (
	TypeInfo         Type = "info"
	TypeWarning      Type = "warning"
	TypeError        Type = "error"
	TypeSuccess      Type = "success"
	TypeUrgent       Type = "urgent"
	TypeSystem       Type = "system"
	TypeAnnouncement Type = "announcement"
)

// Types lists every notification type known to the client.
func Types() []Type {
	return []Type{
		TypeInfo,
		TypeWarning,
		TypeError,
		TypeSuccess,
		TypeUrgent,
		TypeSystem,
		TypeAnnouncement,
	}
}

// IsValid reports whether t is one of the known types.
func (t Type) IsValid() bool {
	switch t {
	case TypeInfo, TypeWarning, TypeError, TypeSuccess, TypeUrgent, TypeSystem, TypeAnnouncement:
		return true
	}
	return false
}

// RequiresInteraction reports whether a host should keep the notification
// visible until the user acts on it.
func (t Type) RequiresInteraction() bool {
	return t == TypeUrgent || t == TypeError
}

// ParseType converts a raw string into a known Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", ErrUnknownType
	}
	return t, nil
}

// Notification is a single notification delivered over the stream or fetched
// through the gateway. Only Read ever changes after creation.
type Notification struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Type       Type            `json:"type"`
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"` // opaque payload
	Icon       string          `json:"icon,omitempty"`
	Read       bool            `json:"read"`
	Delivered  bool            `json:"delivered"`
	CreatedAt  time.Time       `json:"createdAt"`
	ConsumedAt *time.Time      `json:"consumedAt,omitempty"`
}

// Stats is the per-user summary returned by the gateway.
type Stats struct {
	Total  int          `json:"total"`
	Unread int          `json:"unread"`
	Read   int          `json:"read"`
	ByType map[Type]int `json:"byType,omitempty"`
}

// Decode parses a JSON payload into a Notification.
// Unknown types are kept as-is so new server-side types don't break the stream.
func Decode(data []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return Notification{}, &DecodeError{Payload: truncate(data), Err: err}
	}
	if n.ID == "" {
		return Notification{}, &DecodeError{Payload: truncate(data), Err: ErrMissingID}
	}
	return n, nil
}

func truncate(data []byte) string {
	const limit = 200
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}
