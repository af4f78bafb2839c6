package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/confirmflow/internal/app"
	"github.com/nfrund/confirmflow/internal/authstate"
	"github.com/nfrund/confirmflow/internal/config"
	"github.com/nfrund/confirmflow/internal/handlers"
	"github.com/nfrund/confirmflow/internal/middleware"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E              *echo.Echo
	Cfg            config.Provider
	deps           app.Dependencies
	authHandler    *handlers.AuthHandler
	confirmHandler *handlers.ConfirmHandler
}

// New creates a Server and registers its routes.
func New(cfg config.Provider, deps app.Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e)

	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(echomw.Recover())

	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	s := &Server{
		E:              e,
		Cfg:            cfg,
		deps:           deps,
		authHandler:    handlers.NewAuthHandler(deps.Issuer, deps.Bus),
		confirmHandler: handlers.NewConfirmHandler(deps.Verifier, deps.Bus, deps.Catalog, deps.Overrides),
	}
	s.RegisterRoutes()
	return s
}

// WatchTransitions logs every auth state transition published on the bus
// until ctx is canceled.
func (s *Server) WatchTransitions(ctx context.Context) error {
	if s.deps.Bus == nil {
		return nil
	}
	return authstate.Watch(ctx, s.deps.Bus, func(ctx context.Context, t authstate.Transition) error {
		slog.Info("Auth state transition", "id", t.ID, "from", t.From, "to", t.To, "username", t.Username)
		return nil
	})
}
