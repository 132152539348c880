package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/notiprefs/internal/auth"
)

// HandleWebSocket returns an HTTP handler that upgrades authenticated
// requests to WebSocket and runs them as Hub clients until they disconnect.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			// Auth is a bearer token, not a cookie, so cross-origin pages
			// cannot ride on a victim's session.
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err, "user_id", ac.UserID)
			return
		}
		defer conn.CloseNow()

		logger.Debug("websocket connected", "user_id", ac.UserID)
		client := NewClient(hub, conn, ac.UserID)
		client.Run(r.Context())
		logger.Debug("websocket disconnected", "user_id", ac.UserID)
	}
}
