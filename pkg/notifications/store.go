package notifications

import (
	"sort"
	"sync"
)

// Store is an in-memory, newest-first list of notifications with an unread
// counter that is maintained incrementally on every mutation.
// Duplicate ids are accepted as-is; Add never deduplicates.
type Store struct {
	items  []Notification
	unread int
	mu     sync.RWMutex
}

// NewStore creates an empty notification store.
func NewStore() *Store {
	return &Store{}
}

// Add prepends a notification.
func (s *Store) Add(n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, Notification{})
	copy(s.items[1:], s.items)
	s.items[0] = n

	if !n.Read {
		s.unread++
	}
}

// Seed merges a hydration batch into the store. The result is ordered newest
// first by CreatedAt; on equal timestamps entries already in the store keep
// precedence over seeded ones.
func (s *Store) Seed(items []Notification) {
	if len(items) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]Notification, 0, len(s.items)+len(items))
	merged = append(merged, s.items...)
	merged = append(merged, items...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	for _, n := range items {
		if !n.Read {
			s.unread++
		}
	}
	s.items = merged
}

// MarkRead flips the first unread entry with the given id.
// Returns false without touching the counter if the id is absent or already read.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id && !s.items[i].Read {
			s.items[i].Read = true
			s.unread = max(s.unread-1, 0)
			return true
		}
	}
	return false
}

// MarkAllRead flips every unread entry and returns how many were changed.
func (s *Store) MarkAllRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.items {
		if !s.items[i].Read {
			s.items[i].Read = true
			changed++
		}
	}
	s.unread = 0
	return changed
}

// Remove deletes every entry with the given id.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	removed := false
	for _, n := range s.items {
		if n.ID == id {
			removed = true
			if !n.Read {
				s.unread--
			}
			continue
		}
		kept = append(kept, n)
	}

	// zero the tail so removed entries can be collected
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = Notification{}
	}
	s.items = kept
	return removed
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.unread = 0
}

// Get returns a copy of the first entry with the given id.
func (s *Store) Get(id string) (Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.items {
		if n.ID == id {
			return n, true
		}
	}
	return Notification{}, false
}

// List returns a copy of the entries, newest first.
func (s *Store) List() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}
