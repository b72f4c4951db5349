package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/reconnect"
)

func TestErrors(t *testing.T) {
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, "errors", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, err1, g[0].Value.Any())
	assert.Equal(t, err2, g[1].Value.Any())

	assert.True(t, logger.Errors(nil).Equal(slog.Attr{}))
}

func TestOptionalAttrs(t *testing.T) {
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
	assert.True(t, logger.UserID("").Equal(slog.Attr{}))
	assert.True(t, logger.NotificationID("").Equal(slog.Attr{}))
	assert.True(t, logger.EventID("").Equal(slog.Attr{}))
	assert.True(t, logger.DepartmentIDs(nil).Equal(slog.Attr{}))

	assert.Equal(t, "boom", logger.Error(errors.New("boom")).Value.Any().(error).Error())
	assert.Equal(t, "u1", logger.UserID("u1").Value.String())
}

func TestDomainAttrs(t *testing.T) {
	assert.Equal(t, "connected", logger.State(reconnect.Connected).Value.String())
	assert.Equal(t, "message", logger.EventName("").Value.String())
	assert.Equal(t, int64(3), logger.Attempt(3).Value.Int64())
	assert.Equal(t, 2*time.Second, logger.Delay(2*time.Second).Value.Duration())

	tr := logger.Transition(reconnect.Connecting, reconnect.Connected)
	require.Equal(t, "transition", tr.Key)
	g := tr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "connecting", g[0].Value.String())
	assert.Equal(t, "connected", g[1].Value.String())
}
