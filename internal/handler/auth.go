package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/notiprefs/internal/auth"
	"github.com/dukerupert/notiprefs/internal/prefs"
)

type AuthHandler struct {
	svc    *prefs.Service
	tokens *auth.TokenIssuer
	logger *slog.Logger
}

func NewAuthHandler(svc *prefs.Service, tokens *auth.TokenIssuer, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, tokens: tokens, logger: logger}
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Token exchanges a username and password for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	u, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, prefs.ErrInvalidCredentials) {
			h.logger.Warn("login failed", "username", req.Username)
		}
		writeServiceError(w, r, h.logger, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(u.ID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expiresAt})
}
