package client

import (
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Observer receives session events. Calls are made outside the client lock,
// so an observer may call back into the client.
type Observer interface {
	OnNotification(n notifications.Notification)
	OnConnect()
	OnDisconnect()
	OnError(err error)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Notification func(notifications.Notification)
	Connect      func()
	Disconnect   func()
	Error        func(error)
}

func (o ObserverFuncs) OnNotification(n notifications.Notification) {
	if o.Notification != nil {
		o.Notification(n)
	}
}

func (o ObserverFuncs) OnConnect() {
	if o.Connect != nil {
		o.Connect()
	}
}

func (o ObserverFuncs) OnDisconnect() {
	if o.Disconnect != nil {
		o.Disconnect()
	}
}

func (o ObserverFuncs) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

type observerEntry struct {
	id  uint64
	obs Observer
}

// observers is a copy-on-read registry. Notifications iterate a snapshot, so
// unsubscribing from inside a callback is safe.
type observers struct {
	mu      sync.RWMutex
	entries []observerEntry
	nextID  uint64
}

func (o *observers) add(obs Observer) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.nextID++
	id := o.nextID
	o.entries = append(o.entries, observerEntry{id: id, obs: obs})

	var once sync.Once
	return func() {
		once.Do(func() { o.remove(id) })
	}
}

func (o *observers) remove(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, e := range o.entries {
		if e.id == id {
			o.entries = append(o.entries[:i:i], o.entries[i+1:]...)
			return
		}
	}
}

func (o *observers) snapshot() []Observer {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]Observer, len(o.entries))
	for i, e := range o.entries {
		out[i] = e.obs
	}
	return out
}

func (o *observers) each(fn func(Observer)) {
	for _, obs := range o.snapshot() {
		fn(obs)
	}
}
