package server

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/notiprefs/internal/auth"
	"github.com/dukerupert/notiprefs/internal/database"
	"github.com/dukerupert/notiprefs/internal/handler"
	"github.com/dukerupert/notiprefs/internal/middleware"
	"github.com/dukerupert/notiprefs/internal/prefs"
	ws "github.com/dukerupert/notiprefs/internal/websocket"
)

// Config holds the HTTP-facing knobs that are not part of the domain.
type Config struct {
	LoginRPS   float64
	LoginBurst int
}

type Server struct {
	db          *database.DB
	hub         *ws.Hub
	svc         *prefs.Service
	tokens      *auth.TokenIssuer
	typeH       *handler.TypeHandler
	preferenceH *handler.PreferenceHandler
	authH       *handler.AuthHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *database.DB, tokens *auth.TokenIssuer, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	svc := prefs.NewService(db,
		prefs.WithPublisher(hub),
		prefs.WithLogger(logger.With("component", "prefs")),
	)

	return &Server{
		db:          db,
		hub:         hub,
		svc:         svc,
		tokens:      tokens,
		typeH:       handler.NewTypeHandler(svc, logger.With("component", "notification_type")),
		preferenceH: handler.NewPreferenceHandler(svc, logger.With("component", "notification_preference")),
		authH:       handler.NewAuthHandler(svc, tokens, logger.With("component", "auth")),
		rateLimiter: middleware.NewRateLimiter(cfg.LoginRPS, cfg.LoginBurst),
		logger:      logger,
	}
}

// Service returns the domain service, shared with the backfill scheduler.
func (s *Server) Service() *prefs.Service {
	return s.svc
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("POST /auth/token", s.rateLimited(http.HandlerFunc(s.authH.Token)))

	// Notification types: reads are public, writes need an admin
	mux.HandleFunc("GET /notification-types/{$}", s.typeH.List)
	mux.HandleFunc("GET /notification-types/{id}/{$}", s.typeH.Get)
	mux.Handle("POST /notification-types/{$}", middleware.RequireAdmin(http.HandlerFunc(s.typeH.Create)))
	mux.Handle("PUT /notification-types/{id}/{$}", middleware.RequireAdmin(http.HandlerFunc(s.typeH.Update)))
	mux.Handle("PATCH /notification-types/{id}/{$}", middleware.RequireAdmin(http.HandlerFunc(s.typeH.Update)))
	mux.Handle("DELETE /notification-types/{id}/{$}", middleware.RequireAdmin(http.HandlerFunc(s.typeH.Delete)))

	// Notification preferences: always scoped to the caller
	mux.Handle("GET /notification-preferences/{$}", middleware.RequireAuth(http.HandlerFunc(s.preferenceH.List)))
	mux.Handle("PUT /notification-preferences/update_preferences/{$}", middleware.RequireAuth(http.HandlerFunc(s.preferenceH.UpdatePreferences)))

	mux.Handle("GET /ws", middleware.RequireAuth(ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket"))))

	authenticated := middleware.Authenticate(s.tokens, s.svc)(mux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(authenticated)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) rateLimited(h http.Handler) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.RealIP)(h)
}
