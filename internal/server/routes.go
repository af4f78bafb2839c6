package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/confirmflow/internal/authstate"
	"github.com/nfrund/confirmflow/internal/middleware"
)

// codeRequestsPerMinute bounds code submissions and resends per client IP.
const codeRequestsPerMinute = 10

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter(codeRequestsPerMinute)
	confirming := middleware.RequireState(s.deps.Bus, authstate.ConfirmSignUp)
	signedIn := middleware.RequireState(s.deps.Bus, authstate.SignedIn)

	s.E.GET("/", s.authHandler.HomeGet, signedIn)

	s.E.GET("/auth/signup", s.authHandler.SignUpGet)
	s.E.POST("/auth/signup", s.authHandler.SignUpPost, rateLimiter)
	s.E.GET("/auth/login", s.authHandler.LoginGet)
	s.E.GET("/auth/logout", s.authHandler.Logout)

	s.E.GET("/auth/confirm", s.confirmHandler.ConfirmGet, confirming)
	s.E.POST("/auth/confirm", s.confirmHandler.ConfirmPost, confirming, rateLimiter)
	s.E.POST("/auth/confirm/resend", s.confirmHandler.ResendPost, confirming, rateLimiter)
	s.E.GET("/auth/confirm/start", s.confirmHandler.ConfirmStart)
	s.E.GET("/auth/confirm/back", s.confirmHandler.BackGet, confirming)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
