package middleware

import (
	"fmt"
	"net/http"
)

// DefaultMaxBodyBytes caps JSON request bodies (1 MiB). Asset creation and spreadsheet
// export pass the configured upload limit instead.
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes caps the request body. A declared Content-Length over the cap is refused with
// 413 before the handler runs; chunked bodies are cut off by http.MaxBytesReader and the
// handler reports the *http.MaxBytesError.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				jsonError(w, fmt.Sprintf("request body exceeds %d bytes", maxBytes), http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
