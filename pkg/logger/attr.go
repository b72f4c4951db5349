package logger

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is empty, it returns an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// DepartmentIDs records the subscribed departments under "department_ids".
func DepartmentIDs(ids []string) slog.Attr {
	if len(ids) == 0 {
		return slog.Attr{}
	}
	return slog.Any("department_ids", ids)
}

// NotificationID records the notification identifier under "notification_id".
func NotificationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notification_id", id)
}

// EventID records the stream event id under "event_id".
func EventID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("event_id", id)
}

// EventName records the stream event name under "event".
func EventName(name string) slog.Attr {
	if name == "" {
		name = "message"
	}
	return slog.String("event", name)
}

// State records a connection state under "state".
func State(s fmt.Stringer) slog.Attr {
	return slog.String("state", s.String())
}

// Transition records a state change as "from" and "to" under "transition".
func Transition(from, to fmt.Stringer) slog.Attr {
	return Group("transition", slog.String("from", from.String()), slog.String("to", to.String()))
}

// Attempt records the reconnect attempt number under "attempt".
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Delay records a backoff delay under "delay".
func Delay(d time.Duration) slog.Attr {
	return slog.Duration("delay", d)
}

// Duration records an elapsed duration under "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// URL records a request or stream URL under "url".
func URL(u string) slog.Attr {
	return slog.String("url", u)
}

// StatusCode records an HTTP status under "status".
func StatusCode(code int) slog.Attr {
	return slog.Int("status", code)
}

// Component records the component name under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Service records the service name under "service".
func Service(name string) slog.Attr {
	return slog.String("service", name)
}
