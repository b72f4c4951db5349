// Package sse writes the text/event-stream wire format on top of
// github.com/tmaxmax/go-sse.
//
// Write frames a single event and WriteComment a keep-alive comment:
//
//	w.Header().Set("Content-Type", "text/event-stream")
//	_ = sse.Write(w, sse.Event{ID: id, Name: "notification", Data: payload})
//	w.(http.Flusher).Flush()
//
// Multi-line data is split into several data fields and CR or CRLF line
// breaks are normalized to LF. Names and ids must be single-line. Parsing
// on the client side is done by go-sse's Read in the transport package.
package sse
