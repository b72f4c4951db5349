package client

import (
	"context"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// DefaultFeedBuffer is the per-subscriber channel capacity of Feed.
const DefaultFeedBuffer = 64

// feed fans notifications out to channel subscribers. A subscriber whose
// buffer is full misses the notification instead of blocking the stream.
type feed struct {
	subscribers map[*feedSubscriber]struct{}
	bufferSize  int
	closed      bool
	done        chan struct{}
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup
}

type feedSubscriber struct {
	ch   chan notifications.Notification
	once sync.Once
}

func (s *feedSubscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

func newFeed(bufferSize int) *feed {
	return &feed{
		subscribers: make(map[*feedSubscriber]struct{}),
		bufferSize:  max(bufferSize, 1),
		done:        make(chan struct{}),
	}
}

// subscribe returns a channel that receives every published notification
// until ctx is done or the feed is closed.
func (f *feed) subscribe(ctx context.Context) <-chan notifications.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &feedSubscriber{ch: make(chan notifications.Notification, f.bufferSize)}
	if f.closed {
		sub.close()
		return sub.ch
	}
	f.subscribers[sub] = struct{}{}

	f.cleanupWg.Add(1)
	go func() {
		defer f.cleanupWg.Done()
		select {
		case <-ctx.Done():
			f.unsubscribe(sub)
		case <-f.done:
		}
	}()

	return sub.ch
}

// publish reports how many subscribers missed n because their buffer was full.
func (f *feed) publish(n notifications.Notification) int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return 0
	}

	dropped := 0
	for sub := range f.subscribers {
		select {
		case sub.ch <- n:
		default:
			dropped++
		}
	}
	return dropped
}

func (f *feed) close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	close(f.done)
	for sub := range f.subscribers {
		sub.close()
	}
	clear(f.subscribers)
	f.mu.Unlock()

	f.cleanupWg.Wait()
}

func (f *feed) unsubscribe(sub *feedSubscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.subscribers, sub)
	sub.close()
}
