// Package notifications defines the notification model shared by the stream
// transport, the REST gateway and the client, together with the in-memory
// Store that backs a client session.
//
// # Model
//
// A Notification is identified by its ID and is immutable except for the Read
// flag, which only ever moves from false to true. Payloads arriving from the
// event stream are parsed with Decode, which reports malformed JSON as a
// *DecodeError so callers can log and drop a single bad event without tearing
// down the stream.
//
// # Store
//
// Store keeps notifications newest first and maintains the unread counter
// incrementally:
//
//	store := notifications.NewStore()
//	store.Add(n)              // prepend, unread++ when !n.Read
//	store.MarkRead(n.ID)      // no-op for unknown or already-read ids
//	store.MarkAllRead()
//	store.Remove(n.ID)
//	store.Clear()
//
// After every operation UnreadCount equals the number of entries whose Read
// flag is false.
//
// Seed merges a hydration batch fetched over REST with whatever the stream has
// already delivered, ordering the result by CreatedAt.
//
// # Duplicates
//
// Add accepts duplicate ids unconditionally. A redelivered notification
// therefore appears twice and counts twice towards the unread total until it
// is marked read or removed.
package notifications
