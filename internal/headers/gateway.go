package headers

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// Gateway wraps next so that every response carries set and OPTIONS requests
// are answered directly without reaching next.
//
// The set is injected when the response headers are finalized, after next has
// written its own headers, so the set's entries win on name collision no
// matter what next does. Status and body pass through untouched, error
// responses included.
func Gateway(set Set, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			// CORS preflight: empty 200 with the full set, no delegation.
			set.Apply(w.Header())
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(&injectingWriter{ResponseWriter: w, set: set}, r)
	})
}

// injectingWriter applies the header set immediately before the header block
// is transmitted. Handlers that skip WriteHeader are covered too: the
// implicit 200 on first Write goes through the same path.
type injectingWriter struct {
	http.ResponseWriter
	set      Set
	injected bool
}

func (w *injectingWriter) WriteHeader(status int) {
	if !w.injected {
		w.injected = true
		w.set.Apply(w.Header())
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *injectingWriter) Write(b []byte) (int, error) {
	if !w.injected {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer for http.ResponseController.
func (w *injectingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Flush forwards to the underlying writer when it supports flushing.
func (w *injectingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack hands the connection over for protocol upgrades (WebSocket).
// A hijacked response is written to the raw connection and bypasses
// header injection.
func (w *injectingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, errors.New("response writer does not support hijacking")
}
