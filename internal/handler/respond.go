package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/notiprefs/internal/prefs"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields prefs.FieldErrors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps a domain error to its status code. Anything
// unrecognised is logged and answered with 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		verr *prefs.ValidationError
		dup  *prefs.DuplicateError
		nf   *prefs.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message, Fields: verr.Fields})
	case errors.As(err, &dup):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  dup.Message,
			Fields: prefs.FieldErrors{dup.Field: {dup.Message}},
		})
	case errors.As(err, &nf):
		writeError(w, http.StatusNotFound, nf.Detail)
	case errors.Is(err, prefs.ErrForbidden), errors.Is(err, prefs.ErrInvalidCredentials):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}
