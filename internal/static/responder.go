// Package static resolves request paths to files on disk. Path resolution,
// MIME detection, directory listings, and error responses are delegated to
// net/http's file server.
package static

import (
	"net/http"
	"strings"
)

// Responder serves files from a root directory.
type Responder struct {
	fs http.Handler
}

// NewResponder creates a responder rooted at dir.
func NewResponder(dir string) *Responder {
	return &Responder{fs: http.FileServer(http.Dir(dir))}
}

// ServeHTTP streams the file named by the request path. Wasm modules get an
// explicit content type so WebAssembly.instantiateStreaming accepts them even
// when the host's MIME table predates application/wasm.
func (rs *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, ".wasm") {
		w.Header().Set("Content-Type", "application/wasm")
	}
	rs.fs.ServeHTTP(w, r)
}
