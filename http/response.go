package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/quire"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorClass maps a service sentinel to a response. An empty message means the
// error's own text is safe to show the caller.
type errorClass struct {
	target  error
	status  int
	code    string
	message string
}

var errorClasses = []errorClass{
	{quire.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized", "Missing or invalid credentials"},
	{quire.ErrInvalidInput, http.StatusBadRequest, "invalid_input", ""},
	{quire.ErrNotFound, http.StatusNotFound, "not_found", "Record not found"},
}

// WriteError writes an ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	if err := WriteJSON(w, status, ErrorResponse{Error: code, Message: message}); err != nil {
		slog.Error("encode error response", "error", err)
	}
}

// HandleError turns a service error into a response. Anything that is not a
// client error becomes an opaque 500 and is logged with its full chain.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteError(w, http.StatusRequestEntityTooLarge, "too_large", "Request body too large")
		return
	}

	for _, c := range errorClasses {
		if !errors.Is(err, c.target) {
			continue
		}
		msg := c.message
		if msg == "" {
			msg = err.Error()
		}
		slog.DebugContext(r.Context(), "client error", "path", r.URL.Path, "status", c.status, "error", err)
		WriteError(w, c.status, c.code, msg)
		return
	}

	slog.ErrorContext(r.Context(), "request error", "method", r.Method, "path", r.URL.Path, "error", err)
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// WriteJSON encodes data as the response body.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}
