package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/notiprefs/internal/prefs"
)

type TypeHandler struct {
	svc    *prefs.Service
	logger *slog.Logger
}

func NewTypeHandler(svc *prefs.Service, logger *slog.Logger) *TypeHandler {
	return &TypeHandler{svc: svc, logger: logger}
}

type typeRequest struct {
	Name string `json:"name"`
}

func (h *TypeHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListTypes(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *TypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	t, err := h.svc.GetType(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	t, err := h.svc.CreateType(r.Context(), req.Name)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Update serves both PUT and PATCH; name is the only writable field.
func (h *TypeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	var req typeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	t, err := h.svc.UpdateType(r.Context(), id, req.Name)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TypeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := h.svc.DeleteType(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
