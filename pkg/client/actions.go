package client

import (
	"context"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// MarkAsRead marks id read on the server, then in the store.
// On a gateway error the store is left untouched.
func (c *Client) MarkAsRead(ctx context.Context, id string) error {
	if c.isClosed() {
		return ErrClosed
	}
	if err := c.gateway.MarkAsRead(ctx, id); err != nil {
		c.logger.WarnContext(ctx, "mark as read failed", logger.NotificationID(id), logger.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.MarkRead(id)
	c.metrics.SetUnread(c.store.UnreadCount())
	return nil
}

// MarkAllAsRead marks every notification of the user read on the server,
// then in the store.
func (c *Client) MarkAllAsRead(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	if err := c.gateway.MarkAllAsRead(ctx, c.cfg.UserID); err != nil {
		c.logger.WarnContext(ctx, "mark all as read failed", logger.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.MarkAllRead()
	c.metrics.SetUnread(0)
	return nil
}

// DeleteNotification deletes id on the server, then removes it from the store.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	if c.isClosed() {
		return ErrClosed
	}
	if err := c.gateway.DeleteNotification(ctx, id); err != nil {
		c.logger.WarnContext(ctx, "delete notification failed", logger.NotificationID(id), logger.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Remove(id)
	c.metrics.SetUnread(c.store.UnreadCount())
	return nil
}
