// Package httpserver runs the operational HTTP endpoint of a notification
// client process: Prometheus metrics plus liveness and readiness checks.
//
//	srv := httpserver.New(httpserver.WithAddr(":9090"), httpserver.WithLogger(log))
//	h := httpserver.Routes(registry, func(context.Context) error {
//		if !c.IsConnected() {
//			return errors.New("stream not connected")
//		}
//		return nil
//	})
//	if err := srv.Run(ctx, h); err != nil {
//		return err
//	}
//
// Run blocks until ctx is done, then shuts the server down gracefully within
// the configured timeout.
package httpserver
