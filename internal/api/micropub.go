package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/metrics"
	"github.com/starford/raido/internal/mf2"
	"github.com/starford/raido/internal/micropub"
)

// maxBodyBytes caps Micropub request bodies, enforced by the router.
const maxBodyBytes = 10 << 20

// MicropubHandler serves the Micropub endpoint.
type MicropubHandler struct {
	svc     *micropub.Service
	metrics *metrics.Metrics
}

// NewMicropubHandler creates a new MicropubHandler.
func NewMicropubHandler(svc *micropub.Service, m *metrics.Metrics) *MicropubHandler {
	return &MicropubHandler{svc: svc, metrics: m}
}

// Publish handles POST /micropub.
//
//	@Summary		Create a post from an mf2 document
//	@Tags			micropub
//	@Accept			json,x-www-form-urlencoded,mpfd
//	@Produce		json
//	@Success		201	{object}	Post
//	@Header			201	{string}	Location	"Public URL of the new post"
//	@Failure		400	{object}	errResponse
//	@Failure		401	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/micropub [post]
func (h *MicropubHandler) Publish(w http.ResponseWriter, r *http.Request) {
	doc, err := decodeDocument(r)
	if err != nil {
		reason := metrics.ReasonDecode
		if errors.Is(err, apperr.ErrValidation) {
			reason = metrics.ReasonValidation
		}
		h.reject(w, reason, err.Error())
		return
	}
	if doc.Action != "" {
		h.reject(w, metrics.ReasonUnsupported, fmt.Sprintf("action %q is not supported", doc.Action))
		return
	}

	post, err := h.svc.Publish(r.Context(), doc)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrValidation):
			h.reject(w, metrics.ReasonValidation, err.Error())
		case errors.Is(err, apperr.ErrUnsupported):
			h.reject(w, metrics.ReasonUnsupported, err.Error())
		default:
			h.metrics.RecordFailure(metrics.ReasonInternal)
			slog.Error("micropub publish failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	w.Header().Set("Location", h.svc.Location(post.Path))
	writeJSON(w, http.StatusCreated, post)
}

// Query handles GET /micropub. Configuration, source and syndication queries
// are not offered.
//
//	@Summary		Micropub query endpoint (unsupported)
//	@Tags			micropub
//	@Produce		json
//	@Param			q	query		string	false	"Query type"
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/micropub [get]
func (h *MicropubHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		h.reject(w, metrics.ReasonDecode, "query parameter 'q' is required")
		return
	}
	h.reject(w, metrics.ReasonUnsupported, fmt.Sprintf("query %q is not supported", q))
}

func (h *MicropubHandler) reject(w http.ResponseWriter, reason, description string) {
	h.metrics.RecordFailure(reason)
	writeJSON(w, http.StatusBadRequest, micropubError(errInvalidRequest, description))
}

// decodeDocument reads an mf2 document from a JSON, urlencoded or multipart
// request body.
func decodeDocument(r *http.Request) (*mf2.Document, error) {
	switch mt := mediaType(r); mt {
	case "application/json":
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if len(data) == 0 {
			return nil, errors.New("request body is empty")
		}
		return mf2.Parse(data)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		return mf2.FromForm(r.PostForm), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		return mf2.FromForm(r.MultipartForm.Value), nil
	default:
		return nil, fmt.Errorf("unsupported content type %q", mt)
	}
}
