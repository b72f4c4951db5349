// Package notifytest provides an in-process fake of the notification backend
// for tests. It serves the event stream and the REST endpoints the client and
// gateway use, keeps notifications in memory, and records every call.
//
//	srv := notifytest.NewServer()
//	defer srv.Close()
//
//	srv.SetHistory("u1", n1, n2)
//	c, _ := client.New(config.Config{APIURL: srv.URL, UserID: "u1", ...})
//	_ = c.Activate(ctx)
//	srv.WaitSubscribers(t, 1)
//	srv.Publish("u1", n3)
//
// Failures can be injected with RejectStreams, FailNext and DropConnections.
package notifytest
