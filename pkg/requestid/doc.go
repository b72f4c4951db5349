// Package requestid correlates gateway calls with server-side logs through
// the X-Request-ID header.
//
// The outgoing side uses Ensure: it returns the id already stored in the
// context or stores a fresh UUID, and the gateway sends that id with the
// request. The incoming side uses Middleware, which accepts a well-formed
// X-Request-ID or replaces it, echoes it in the response and stores it in the
// request context.
//
//	ctx = requestid.WithContext(ctx, "sync-42")
//	_, err := gw.GetHistory(ctx, "u1") // sends X-Request-ID: sync-42
//
// LoggerExtractor adds the id to every record logged with that context:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
package requestid
