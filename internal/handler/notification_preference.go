package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/notiprefs/internal/auth"
	"github.com/dukerupert/notiprefs/internal/prefs"
)

type PreferenceHandler struct {
	svc    *prefs.Service
	logger *slog.Logger
}

func NewPreferenceHandler(svc *prefs.Service, logger *slog.Logger) *PreferenceHandler {
	return &PreferenceHandler{svc: svc, logger: logger}
}

func callerFrom(r *http.Request) auth.AuthContext {
	ac, _ := auth.FromContext(r.Context())
	return ac
}

// List returns the caller's preferences.
func (h *PreferenceHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListPreferences(r.Context(), callerFrom(r))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// UpdatePreferences applies a list of updates keyed by notification type name.
func (h *PreferenceHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var updates []prefs.PreferenceUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "expected a list of preference updates")
		return
	}

	if err := h.svc.UpdatePreferences(r.Context(), callerFrom(r), updates); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "preferences updated successfully"})
}
