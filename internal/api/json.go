package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Micropub error codes.
const (
	errInvalidRequest = "invalid_request"
	errUnauthorized   = "unauthorized"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error       string `json:"error" validate:"required"`
	Description string `json:"error_description,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

func micropubError(code, description string) errResponse {
	return errResponse{Error: code, Description: description}
}
