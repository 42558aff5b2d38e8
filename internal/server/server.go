package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/arthamatics/arthamatics-be/internal/auth"
	"github.com/arthamatics/arthamatics-be/internal/config"
	"github.com/arthamatics/arthamatics-be/internal/http/handlers"
	"github.com/arthamatics/arthamatics-be/internal/kite"
	"github.com/arthamatics/arthamatics-be/internal/middleware"
	"github.com/arthamatics/arthamatics-be/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, log *zap.Logger) *Server {
	mux := http.NewServeMux()

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	kiteService := kite.NewService(kite.Params{APIKey: cfg.KiteAPIKey, APISecret: cfg.KiteAPISecret})
	binder := kite.NewBinder(store, kiteService)

	handlers.NewHealthHandler(time.Now()).Register(mux)
	handlers.NewAuthHandler(store, tokenManager, log).Register(mux)
	handlers.NewCustomerHandler(store, tokenManager, log).Register(mux)
	handlers.NewKiteHandler(store, kiteService, binder, tokenManager, log).Register(mux)

	handler := middleware.CORS(cfg.CORSOrigins, middleware.Logging(log, mux))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
