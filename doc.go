// Package notifykit is a client for a real-time notification service.
//
// It keeps a live server-sent event stream open for one user, reconnects with
// exponential backoff, and maintains an in-memory notification store with an
// unread counter. A REST gateway covers history, read state, deletion and
// sending.
//
// The top-level helpers wire the packages together from a config:
//
//	c, err := notifykit.FromEnv(
//		client.WithOnNotification(func(n notifications.Notification) {
//			fmt.Println(n.Title)
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	if err := c.Activate(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Packages:
//
//   - client: session controller, observers and confirmed actions
//   - reconnect: connection state machine and backoff policy
//   - transport: HTTP event stream dialer
//   - sse: event stream wire format
//   - notifications: data model and store
//   - gateway: REST client
//   - config: env, .env and YAML loading
//   - logger: slog factory and attribute helpers
//   - metrics: Prometheus collectors
//   - notifytest: in-process fake backend for tests
package notifykit
