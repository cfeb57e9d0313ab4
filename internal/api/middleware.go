// Package api implements the Micropub endpoint and the Raido REST API using chi.
package api

import (
	"crypto/subtle"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/raido/internal/metrics"
)

// maxFormMemory bounds the in-memory part of multipart bodies.
const maxFormMemory = 10 << 20

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, requests must carry the token either as an
// "Authorization: Bearer <token>" header or, for form-encoded bodies, as an
// access_token field.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			if subtle.ConstantTimeCompare([]byte(requestToken(r)), []byte(token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, micropubError(errUnauthorized, "a valid access token is required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if r.Method != http.MethodPost {
		return ""
	}
	switch mediaType(r) {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return ""
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return ""
		}
	default:
		return ""
	}
	return r.PostFormValue("access_token")
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

// countRejected records 401 responses as failed Micropub requests.
func countRejected(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() == http.StatusUnauthorized {
				m.RecordFailure(metrics.ReasonUnauthorized)
			}
		})
	}
}
