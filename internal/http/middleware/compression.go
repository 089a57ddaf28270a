package middleware

import (
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// compressibleTypes are the response types worth compressing: API documents
// and brand stylesheets.
var compressibleTypes = []string{
	"application/json",
	"application/problem+json",
	"application/openapi+json",
	"application/yaml",
	"text/css",
	"text/html",
	"text/plain",
}

// Compress negotiates br, gzip or deflate at level for compressible
// responses. Event streams are passed through untouched: a compressing
// writer buffers, which holds events back until the buffer fills.
func Compress(level int) func(http.Handler) http.Handler {
	c := chimiddleware.NewCompressor(level, compressibleTypes...)
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return exceptStreams(c.Handler)
}

func exceptStreams(compress func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		compressed := compress(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isEventStream(r) {
				next.ServeHTTP(w, r)
				return
			}
			compressed.ServeHTTP(w, r)
		})
	}
}

// isEventStream matches on Accept, or on the path for EventSource clients
// that omit it.
func isEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream") ||
		strings.HasSuffix(r.URL.Path, "/events")
}
