package server

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/confirmflow/internal/domain"
	"github.com/nfrund/confirmflow/internal/middleware"
)

// setupErrorHandling installs the HTTP error handler. Echo HTTP errors are
// answered as usual; anything else is logged with a stack trace and answered
// with a generic 500.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}

		logger := middleware.FromContext(c.Request().Context())
		if errors.Is(err, domain.ErrVerifierMissing) {
			logger.Error("Confirmation flow is misconfigured", "error", err)
		} else {
			logger.Error("Internal Server Error (Unhandled)",
				slog.String("error", err.Error()),
				slog.String("stack_trace", string(debug.Stack())),
			)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(http.StatusInternalServerError)
			return
		}
		_ = c.String(http.StatusInternalServerError, "Internal Server Error")
	}
}
