// Package middleware provides HTTP middleware for the metering API.
package middleware

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// RequireContentType returns middleware that rejects body-carrying
// requests whose Content-Type matches none of the allowed media types.
// Requests without a body pass through untouched.
func RequireContentType(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			ct := r.Header.Get("Content-Type")
			mediaType, _, err := mime.ParseMediaType(ct)
			if err == nil {
				for _, want := range allowed {
					if strings.EqualFold(mediaType, want) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			msg := fmt.Sprintf("Content-Type must be one of: %s", strings.Join(allowed, ", "))
			writeError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", msg)
		})
	}
}
