package notifytest_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/gateway"
	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/notifytest"
	"github.com/dmitrymomot/notifykit/pkg/transport"
)

func TestServer_RESTRoundTrip(t *testing.T) {
	t.Parallel()

	srv := notifytest.NewServer()
	t.Cleanup(srv.Close)

	srv.SetHistory("u1",
		notifications.Notification{ID: "n1", UserID: "u1", Type: notifications.TypeInfo, Title: "a", Message: "a"},
		notifications.Notification{ID: "n2", UserID: "u1", Type: notifications.TypeWarning, Title: "b", Message: "b", Read: true},
	)

	gw, err := gateway.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	history, err := gw.GetHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "n1", history[0].ID)

	count, err := gw.GetUnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, gw.MarkAsRead(ctx, "n1"))
	stats, err := gw.GetStats(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Read)
	assert.Equal(t, 0, stats.Unread)

	require.NoError(t, gw.DeleteNotification(ctx, "n2"))
	assert.Len(t, srv.Stored("u1"), 1)

	err = gw.MarkAsRead(ctx, "missing")
	assert.True(t, gateway.IsNotFound(err))

	calls := srv.CallsTo(http.MethodPost, "/notifications/n1/read")
	require.Len(t, calls, 1)
	assert.NotEmpty(t, calls[0].RequestID, "gateway sends a request id")
}

func TestServer_FailNext(t *testing.T) {
	t.Parallel()

	srv := notifytest.NewServer()
	t.Cleanup(srv.Close)

	srv.FailNext(http.MethodGet, "/notifications/user/u1/history", http.StatusServiceUnavailable, "maintenance")

	gw, err := gateway.New(srv.URL)
	require.NoError(t, err)

	_, err = gw.GetHistory(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, gateway.StatusCode(err))
	assert.Contains(t, err.Error(), "maintenance")

	_, err = gw.GetHistory(context.Background(), "u1")
	assert.NoError(t, err, "failure is consumed by the first request")
}

func TestServer_StreamDelivery(t *testing.T) {
	t.Parallel()

	srv := notifytest.NewServer(notifytest.WithConnectedEvent())
	t.Cleanup(srv.Close)

	opened := make(chan struct{}, 1)
	messages := make(chan transport.Event, 4)
	discarded := make(chan string, 4)

	url, err := transport.BuildURL(srv.URL, "u1", []string{"d1"})
	require.NoError(t, err)

	h, err := transport.NewHTTPDialer().Open(context.Background(), url, transport.Handlers{
		OnOpen:    func() { opened <- struct{}{} },
		OnMessage: func(ev transport.Event) { messages <- ev },
		OnDiscard: func(name string, _ error) { discarded <- name },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	waitFor(t, opened)
	srv.WaitSubscribers(t, 1)

	assert.Equal(t, "connected", waitFor(t, discarded))

	sent := srv.Publish("u1", notifications.Notification{Title: "hi", Message: "there"})
	got := waitFor(t, messages)
	assert.Equal(t, sent.ID, got.Notification.ID)
	assert.Equal(t, "notification", got.Name)

	srv.PublishToDepartment("d1", notifications.Notification{Title: "dept", Message: "wide"})
	got = waitFor(t, messages)
	assert.Equal(t, "dept", got.Notification.Title)

	subs := srv.Subscriptions()
	require.Len(t, subs, 1)
	assert.Equal(t, "u1", subs[0].UserID)
	assert.Equal(t, []string{"d1"}, subs[0].DepartmentIDs)
}

func TestServer_RejectStreams(t *testing.T) {
	t.Parallel()

	srv := notifytest.NewServer()
	t.Cleanup(srv.Close)
	srv.RejectStreams(1, http.StatusServiceUnavailable)

	errs := make(chan error, 1)
	url, err := transport.BuildURL(srv.URL, "u1", nil)
	require.NoError(t, err)

	h, err := transport.NewHTTPDialer().Open(context.Background(), url, transport.Handlers{
		OnError: func(err error) { errs <- err },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	err = waitFor(t, errs)
	assert.ErrorIs(t, err, transport.ErrUnexpectedStatus)
	assert.Equal(t, 0, srv.Subscribers())
}

func waitFor[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for signal")
	}
	var zero T
	return zero
}
