// Package client keeps a live notification session for one user.
//
// A Client hydrates its store from the REST gateway, opens the event stream,
// and reconnects with exponential backoff when the stream drops. Observers
// and feeds receive notifications in the order the stream delivered them.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//		return err
//	}
//
//	c, err := client.New(cfg,
//		client.WithLogger(log),
//		client.WithOnNotification(func(n notifications.Notification) {
//			log.Info("notification", logger.NotificationID(n.ID))
//		}),
//	)
//	if err != nil {
//		return err // *config.ConfigError
//	}
//	defer c.Close()
//
//	if err := c.Activate(ctx); err != nil {
//		return err
//	}
//
// Activate fetches the history and, unless AutoConnect is off, connects.
// Connection failures never surface from Connect; they are reported to
// observers through OnError and reflected by State.
//
// # Lifecycle
//
// The connection follows the reconnect package's state machine:
//
//	idle -> connecting -> connected
//	connecting|connected -> error -> (backoff) -> connecting
//	any -> disconnected
//
// Every stream and every retry timer is tied to the generation it was created
// in. Connect, Disconnect and Close start a new generation, so callbacks from
// an abandoned stream or a cancelled timer are ignored.
//
// # Confirmed actions
//
// MarkAsRead, MarkAllAsRead and DeleteNotification call the gateway first and
// only change the local store once the server has accepted the request.
package client
