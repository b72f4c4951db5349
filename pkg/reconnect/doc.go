// Package reconnect holds the pure parts of the stream connection lifecycle:
// the connection State enum, the transition table that drives it, and the
// Policy that decides whether and when a failed stream is retried.
//
// Neither Machine nor Policy starts timers or touches the network; the client
// package owns those side effects and consults these types under its own lock.
//
// Transition table:
//
//	idle | disconnected | error | connected | connecting --connect--> connecting
//	connecting --open--> connected
//	connecting | connected --fail--> error
//	error --retry--> connecting
//	any --disconnect--> disconnected
//
// Policy produces the delay sequence base, 2*base, 4*base, ... capped at
// MaxDelay, and stops once MaxAttempts consecutive retries have been handed
// out. A successful open resets it.
//
//	p := reconnect.DefaultPolicy()
//	for {
//		delay, ok := p.Next()
//		if !ok {
//			break // cap reached or auto-reconnect disabled
//		}
//		time.Sleep(delay)
//	}
package reconnect
