package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dukerupert/notiprefs/internal/auth"
	"github.com/dukerupert/notiprefs/internal/model"
)

// TokenVerifier turns a bearer token into a user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// UserLookup loads the current state of a user. It returns nil when the user
// no longer exists.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// Authenticate resolves the bearer token, if any, and populates AuthContext.
// Requests without a valid token pass through anonymously; RequireAuth and
// RequireAdmin decide what anonymous callers may do.
func Authenticate(tokens TokenVerifier, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Reload so deleted users and role changes take effect immediately.
			u, err := users.GetUser(r.Context(), userID)
			if err != nil || u == nil {
				next.ServeHTTP(w, r)
				return
			}

			ac := auth.AuthContext{
				UserID:   u.ID,
				Username: u.Username,
				IsAdmin:  u.IsAdmin,
			}
			next.ServeHTTP(w, r.WithContext(auth.WithAuth(r.Context(), ac)))
		})
	}
}

// RequireAuth rejects anonymous requests with 403.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAuthenticated(r.Context()) {
			writeError(w, http.StatusForbidden, msgNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin checks that the authenticated user has the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAuthenticated(r.Context()) {
			writeError(w, http.StatusForbidden, msgNotAuthenticated)
			return
		}
		if !auth.IsAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, msgNoPermission)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken reads the Authorization header. Browsers cannot set headers on
// websocket upgrades, so a token query parameter is accepted as a fallback.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}
