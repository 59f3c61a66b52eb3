package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/hongminglow/santuario-be/internal/auth"
	"github.com/hongminglow/santuario-be/internal/config"
	"github.com/hongminglow/santuario-be/internal/http/handlers"
	"github.com/hongminglow/santuario-be/internal/metrics"
	"github.com/hongminglow/santuario-be/internal/middleware"
	"github.com/hongminglow/santuario-be/internal/service"
	"github.com/hongminglow/santuario-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires services, middleware and routes, and returns a ready server.
// db backs the health check and may be nil.
func New(cfg config.Config, store storage.Store, db handlers.Pinger, logger zerolog.Logger) (*Server, error) {
	tokens := auth.NewTokenManager(cfg.SessionSecret, cfg.JWTIssuer, cfg.SessionTTL)
	accounts, err := service.NewAccounts(store, auth.NewHasher(), tokens)
	if err != nil {
		return nil, fmt.Errorf("init accounts: %w", err)
	}
	creatures := service.NewCreatures(store)
	m := metrics.New()
	session := handlers.SessionOptions{TTL: cfg.SessionTTL, Secure: cfg.CookieSecure}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(time.Now(), db).Register(mux)
	mux.Handle("GET /metrics", m.Handler())
	handlers.NewAuthHandler(accounts, session, m).Register(mux, middleware.RequireAuth)
	handlers.NewCreatureHandler(creatures).Register(mux, middleware.RequireAuth)
	pages, err := handlers.NewPageHandler(accounts, creatures, session, m)
	if err != nil {
		return nil, err
	}
	pages.Register(mux)

	gate := middleware.NewGate(tokens, cfg.SessionUpdateAge, cfg.CookieSecure)
	var handler http.Handler = middleware.Guard(mux)
	handler = gate.Authenticate(handler)
	handler = middleware.Locale(handler)
	handler = middleware.Metrics(m, mux, handler)
	handler = middleware.Logging(logger, handler)
	handler = middleware.CORS(cfg.CORSOrigins, handler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}, nil
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
