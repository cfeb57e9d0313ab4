package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/micropub"
	"github.com/starford/raido/internal/posttype"
)

// Handler holds REST API route handlers.
type Handler struct {
	svc *micropub.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *micropub.Service) *Handler {
	return &Handler{svc: svc}
}

// postPath extracts the post path from the URL (everything after /api/posts/).
// Supports encoded slashes (e.g. posts%2F2026%2F10%2Fhello).
func postPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error, attrs ...any) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, micropubError(errInvalidRequest, err.Error()))
	default:
		slog.Error(op+" failed", append(attrs, slog.String("error", err.Error()))...)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts, newest first
//	@Tags			posts
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			type	query		string	false	"Filter by post type"	Enums(note, article, reply, rsvp, like, repost, bookmark, photo, video)
//	@Param			tag		query		string	false	"Filter by category"
//	@Param			status	query		string	false	"Filter by status"	Enums(published, draft)
//	@Success		200		{object}	PostListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := index.ListFilter{
		Tag:    q.Get("tag"),
		Status: q.Get("status"),
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	if raw := q.Get("type"); raw != "" {
		t, err := posttype.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, micropubError(errInvalidRequest, err.Error()))
			return
		}
		f.Type = t
	}

	items, total, err := h.svc.ListPosts(r.Context(), f)
	if err != nil {
		writeServiceError(w, "list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: items, Total: total})
}

// GetPost handles GET /api/posts/*.
//
//	@Summary		Get a single post by path
//	@Tags			posts
//	@Produce		json
//	@Param			path	path		string	true	"Post path, with or without .md"
//	@Success		200		{object}	Post
//	@Header			200		{string}	ETag	"SHA-256 checksum of the stored file"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{path} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	path := postPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	post, err := h.svc.GetPost(r.Context(), path)
	if err != nil {
		writeServiceError(w, "get post", err, slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+post.Checksum+`"`)
	writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/*.
//
//	@Summary		Delete a post
//	@Tags			posts
//	@Param			path	path	string	true	"Post path, with or without .md"
//	@Success		204		"Post deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{path} [delete]
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	path := postPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeletePost(r.Context(), path); err != nil {
		writeServiceError(w, "delete post", err, slog.String("path", path))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across posts
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Responses handles GET /api/responses.
//
//	@Summary		Posts replying to, liking, reposting or bookmarking a URL
//	@Tags			posts
//	@Produce		json
//	@Param			url	query		string	true	"Absolute URL of the post responded to"
//	@Success		200	{object}	ResponsesResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/responses [get]
func (h *Handler) Responses(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'url' is required"))
		return
	}
	rows, err := h.svc.Responses(r.Context(), target)
	if err != nil {
		writeServiceError(w, "responses", err, slog.String("target", target))
		return
	}
	writeJSON(w, http.StatusOK, ResponsesResponse{Target: target, Responses: rows})
}
