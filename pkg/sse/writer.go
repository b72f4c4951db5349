package sse

import (
	"fmt"
	"io"
	"time"

	gosse "github.com/tmaxmax/go-sse"
)

// Event is a single server-sent event frame.
type Event struct {
	ID string
	// Name is the "event" field; empty means the default "message" type.
	Name string
	Data string
	// Retry asks the client to wait this long before reconnecting; zero omits it.
	Retry time.Duration
}

// Write formats ev as a single frame and writes it to w.
// Multi-line data is split across several data fields.
func Write(w io.Writer, ev Event) error {
	msg, err := message(ev)
	if err != nil {
		return err
	}
	_, err = msg.WriteTo(w)
	return err
}

// WriteComment writes a comment frame, typically used as a keep-alive.
func WriteComment(w io.Writer, text string) error {
	msg := &gosse.Message{}
	msg.AppendComment(text)
	_, err := msg.WriteTo(w)
	return err
}

func message(ev Event) (*gosse.Message, error) {
	msg := &gosse.Message{Retry: ev.Retry}
	if ev.ID != "" {
		id, err := gosse.NewID(ev.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
		}
		msg.ID = id
	}
	if ev.Name != "" {
		typ, err := gosse.NewType(ev.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
		}
		msg.Type = typ
	}
	msg.AppendData(ev.Data)
	return msg, nil
}
