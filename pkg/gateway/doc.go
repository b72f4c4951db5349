// Package gateway is a client for the notification REST API.
//
// The stream client uses it to hydrate its store at startup and to confirm
// user actions before mutating local state:
//
//	gw, err := gateway.New("https://api.example.com",
//		gateway.WithCredentials(appKey, appSecret),
//	)
//	history, err := gw.GetHistory(ctx, "u1")
//	err = gw.MarkAsRead(ctx, history[0].ID)
//
// It also exposes the send, broadcast and admin endpoints.
//
// Every request sends and accepts JSON. The x-app-key and x-app-secret
// headers are attached only when both credentials are configured.
//
// Non-2xx responses are returned as *Error, which wraps ErrRequestFailed and
// carries the status and the server's message. Failures that never produced
// a response wrap ErrUnavailable.
//
//	if gateway.IsNotFound(err) {
//		// the notification was already deleted
//	}
package gateway
