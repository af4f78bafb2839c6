package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/confirmflow/internal/authstate"
	"github.com/nfrund/confirmflow/internal/pubsub"
)

// RequireState creates a middleware that only lets requests through when the
// session's auth state is one of states. Other requests are sent to the page
// serving their current state.
func RequireState(publisher pubsub.Publisher, states ...authstate.State) echo.MiddlewareFunc {
	allowed := make(map[authstate.State]struct{}, len(states))
	for _, s := range states {
		allowed[s] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			current := authstate.NewMachine(c, publisher).Current()
			if _, ok := allowed[current]; ok {
				return next(c)
			}

			target := authstate.PathFor(current)
			if c.Request().Header.Get("HX-Request") == "true" {
				c.Response().Header().Set("HX-Redirect", target)
				return c.NoContent(http.StatusOK)
			}
			return c.Redirect(http.StatusSeeOther, target)
		}
	}
}
