package notifications_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

func newNotification(id string, read bool, createdAt time.Time) notifications.Notification {
	return notifications.Notification{
		ID:        id,
		UserID:    "user-1",
		Type:      notifications.TypeInfo,
		Title:     "Title " + id,
		Message:   "Message " + id,
		Read:      read,
		CreatedAt: createdAt,
	}
}

func countUnread(items []notifications.Notification) int {
	n := 0
	for _, item := range items {
		if !item.Read {
			n++
		}
	}
	return n
}

func TestStore_Add(t *testing.T) {
	t.Parallel()

	s := notifications.NewStore()
	now := time.Now()

	s.Add(newNotification("n1", false, now))
	s.Add(newNotification("n2", true, now))
	s.Add(newNotification("n3", false, now))

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "n3", list[0].ID, "newest entry must be at the head")
	assert.Equal(t, "n2", list[1].ID)
	assert.Equal(t, "n1", list[2].ID)
	assert.Equal(t, 2, s.UnreadCount())
}

func TestStore_AddDuplicateIDs(t *testing.T) {
	t.Parallel()

	s := notifications.NewStore()
	n := newNotification("dup", false, time.Now())

	s.Add(n)
	s.Add(n)

	assert.Equal(t, 2, s.Len(), "duplicates are accepted as-is")
	assert.Equal(t, 2, s.UnreadCount())

	assert.True(t, s.MarkRead("dup"))
	assert.Equal(t, 1, s.UnreadCount(), "only the first unread match is flipped")

	assert.True(t, s.Remove("dup"))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.UnreadCount())
}

func TestStore_MarkRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		setup       func(*notifications.Store)
		id          string
		wantChanged bool
		wantUnread  int
	}{
		{
			name: "unread entry",
			setup: func(s *notifications.Store) {
				s.Add(newNotification("n1", false, time.Now()))
				s.Add(newNotification("n2", false, time.Now()))
			},
			id:          "n1",
			wantChanged: true,
			wantUnread:  1,
		},
		{
			name: "already read entry is a no-op",
			setup: func(s *notifications.Store) {
				s.Add(newNotification("n1", true, time.Now()))
				s.Add(newNotification("n2", false, time.Now()))
			},
			id:          "n1",
			wantChanged: false,
			wantUnread:  1,
		},
		{
			name: "unknown id is a no-op",
			setup: func(s *notifications.Store) {
				s.Add(newNotification("n1", false, time.Now()))
			},
			id:          "missing",
			wantChanged: false,
			wantUnread:  1,
		},
		{
			name:        "empty store",
			setup:       func(s *notifications.Store) {},
			id:          "n1",
			wantChanged: false,
			wantUnread:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := notifications.NewStore()
			tt.setup(s)

			assert.Equal(t, tt.wantChanged, s.MarkRead(tt.id))
			assert.Equal(t, tt.wantUnread, s.UnreadCount())
		})
	}
}

func TestStore_MarkAllRead(t *testing.T) {
	t.Parallel()

	s := notifications.NewStore()
	now := time.Now()
	s.Add(newNotification("n1", false, now))
	s.Add(newNotification("n2", true, now))
	s.Add(newNotification("n3", false, now))

	assert.Equal(t, 2, s.MarkAllRead())
	assert.Equal(t, 0, s.UnreadCount())
	for _, n := range s.List() {
		assert.True(t, n.Read)
	}

	assert.Equal(t, 0, s.MarkAllRead(), "second call finds nothing to flip")
}

func TestStore_RemoveAndClear(t *testing.T) {
	t.Parallel()

	s := notifications.NewStore()
	now := time.Now()
	s.Add(newNotification("n1", false, now))
	s.Add(newNotification("n2", true, now))
	s.Add(newNotification("n3", false, now))

	assert.True(t, s.Remove("n1"))
	assert.False(t, s.Remove("n1"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.UnreadCount())

	_, ok := s.Get("n1")
	assert.False(t, ok)
	got, ok := s.Get("n3")
	require.True(t, ok)
	assert.Equal(t, "n3", got.ID)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.UnreadCount())
}

func TestStore_Seed(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty store orders by createdAt", func(t *testing.T) {
		s := notifications.NewStore()
		s.Seed([]notifications.Notification{
			newNotification("old", true, base.Add(-2*time.Hour)),
			newNotification("new", false, base),
			newNotification("mid", false, base.Add(-time.Hour)),
		})

		list := s.List()
		require.Len(t, list, 3)
		assert.Equal(t, []string{"new", "mid", "old"}, ids(list))
		assert.Equal(t, 2, s.UnreadCount())
	})

	t.Run("streamed entries that arrived first are merged", func(t *testing.T) {
		s := notifications.NewStore()
		s.Add(newNotification("live", false, base.Add(time.Minute)))

		s.Seed([]notifications.Notification{
			newNotification("h1", false, base),
			newNotification("h2", false, base.Add(2*time.Minute)),
		})

		assert.Equal(t, []string{"h2", "live", "h1"}, ids(s.List()))
		assert.Equal(t, 3, s.UnreadCount())
	})

	t.Run("ties keep existing entries first", func(t *testing.T) {
		s := notifications.NewStore()
		s.Add(newNotification("live", false, base))
		s.Seed([]notifications.Notification{newNotification("seeded", true, base)})

		assert.Equal(t, []string{"live", "seeded"}, ids(s.List()))
		assert.Equal(t, 1, s.UnreadCount())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		s := notifications.NewStore()
		s.Seed(nil)
		assert.Equal(t, 0, s.Len())
	})
}

func TestStore_ListReturnsCopy(t *testing.T) {
	t.Parallel()

	s := notifications.NewStore()
	s.Add(newNotification("n1", false, time.Now()))

	list := s.List()
	list[0].Read = true

	assert.Equal(t, 1, s.UnreadCount())
	got, _ := s.Get("n1")
	assert.False(t, got.Read)
}

// For any sequence of mutations the unread counter equals the number of
// unread entries.
func TestStore_UnreadInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := notifications.NewStore()
		idGen := rapid.SampledFrom([]string{"a", "b", "c", "d", "e"})
		base := time.Now()
		seq := 0

		t.Repeat(map[string]func(*rapid.T){
			"add": func(t *rapid.T) {
				seq++
				id := idGen.Draw(t, "id")
				read := rapid.Bool().Draw(t, "read")
				s.Add(newNotification(id, read, base.Add(time.Duration(seq)*time.Second)))
			},
			"seed": func(t *rapid.T) {
				n := rapid.IntRange(0, 4).Draw(t, "batch")
				batch := make([]notifications.Notification, 0, n)
				for i := range n {
					offset := rapid.IntRange(-100, 100).Draw(t, fmt.Sprintf("offset%d", i))
					batch = append(batch, newNotification(
						idGen.Draw(t, "id"),
						rapid.Bool().Draw(t, "read"),
						base.Add(time.Duration(offset)*time.Second),
					))
				}
				s.Seed(batch)
			},
			"markRead": func(t *rapid.T) {
				s.MarkRead(idGen.Draw(t, "id"))
			},
			"markAllRead": func(t *rapid.T) {
				s.MarkAllRead()
			},
			"remove": func(t *rapid.T) {
				s.Remove(idGen.Draw(t, "id"))
			},
			"clear": func(t *rapid.T) {
				s.Clear()
			},
			"": func(t *rapid.T) {
				list := s.List()
				if got, want := s.UnreadCount(), countUnread(list); got != want {
					t.Fatalf("unread count drifted: counter=%d actual=%d", got, want)
				}
				if s.Len() != len(list) {
					t.Fatalf("len mismatch: %d vs %d", s.Len(), len(list))
				}
			},
		})
	})
}

func ids(list []notifications.Notification) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n.ID
	}
	return out
}
