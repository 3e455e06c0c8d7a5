// Package headers guarantees a fixed set of response headers on every HTTP
// response the server emits. The default set enables cross-origin isolation
// in browsers, which is what unlocks SharedArrayBuffer and therefore
// multi-threaded wasm.
package headers

import "net/http"

// Header is a single name/value entry in a Set.
type Header struct {
	Name  string
	Value string
}

// Set is an ordered collection of response headers. A Set is fixed at
// construction and safe for concurrent use; values are literal, never
// computed per request.
type Set []Header

// Default returns the header set for cross-origin-isolated local serving:
// COOP/COEP to enable SharedArrayBuffer, permissive CORS for preflights,
// and caching disabled so edits show up on reload.
func Default() Set {
	return Set{
		{"Cross-Origin-Opener-Policy", "same-origin"},
		{"Cross-Origin-Embedder-Policy", "require-corp"},
		{"Access-Control-Allow-Origin", "*"},
		{"Access-Control-Allow-Methods", "GET, POST, OPTIONS"},
		{"Access-Control-Allow-Headers", "*"},
		{"Cache-Control", "no-store, no-cache, must-revalidate"},
	}
}

// Apply sets every entry on h in order, overwriting any existing value of
// the same name.
func (s Set) Apply(h http.Header) {
	for _, e := range s {
		h.Set(e.Name, e.Value)
	}
}
