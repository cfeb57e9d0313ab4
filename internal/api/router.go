package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/raido/internal/metrics"
	"github.com/starford/raido/internal/micropub"
)

// NewRouter creates a chi router with the REST API routes, mounted at /api.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *micropub.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/posts", h.ListPosts)
	r.Get("/posts/*", h.GetPost)
	r.Delete("/posts/*", h.DeletePost)
	r.Get("/search", h.Search)
	r.Get("/responses", h.Responses)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// NewMicropubRouter creates the router mounted at /micropub.
func NewMicropubRouter(svc *micropub.Service, authEnabled bool, token string, m *metrics.Metrics) chi.Router {
	h := NewMicropubHandler(svc, m)

	r := chi.NewRouter()
	// The size cap comes before auth: an access_token form field means the
	// body is read to authenticate the request.
	r.Use(middleware.RequestSize(maxBodyBytes))
	r.Use(countRejected(m))
	r.Use(AuthMiddleware(authEnabled, token))

	r.Post("/", h.Publish)
	r.Get("/", h.Query)

	return r
}
