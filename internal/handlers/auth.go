package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/confirmflow/internal/authstate"
	"github.com/nfrund/confirmflow/internal/domain"
	"github.com/nfrund/confirmflow/internal/pubsub"
	"github.com/nfrund/confirmflow/internal/view"
	"github.com/nfrund/confirmflow/internal/view/dto/auth"
	"github.com/nfrund/confirmflow/web/src/templates/layouts"
	"github.com/nfrund/confirmflow/web/src/templates/pages"
)

// CodeIssuer starts a confirmation by sending a code to an email address.
type CodeIssuer interface {
	Issue(ctx context.Context, email string) error
}

// AuthHandler serves the pages around the confirmation step.
type AuthHandler struct {
	issuer    CodeIssuer
	publisher pubsub.Publisher
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(issuer CodeIssuer, publisher pubsub.Publisher) *AuthHandler {
	return &AuthHandler{issuer: issuer, publisher: publisher}
}

// SignUpGet renders the sign-up page (GET /auth/signup).
func (h *AuthHandler) SignUpGet(c echo.Context) error {
	// Retrieve the email preserved from a failed POST, if any.
	var prefilledEmail string
	if sess, err := session.Get("flash-session", c); err == nil {
		if flashes := sess.Flashes("form_email"); len(flashes) > 0 {
			if val, ok := flashes[0].(string); ok {
				prefilledEmail = val
			}
			_ = sess.Save(c.Request(), c.Response())
		}
	}

	flashes := view.GetFlashData(c)
	page := pages.SignUp(auth.SignUpData{Email: prefilledEmail})
	return view.Render(c, http.StatusOK, layouts.Base("Sign Up", "", flashes, page))
}

// SignUpPost sends a confirmation code and moves to the confirmation step (POST /auth/signup).
func (h *AuthHandler) SignUpPost(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := c.Validate(&req); err != nil {
		view.SetFlashError(c, "Please enter a valid email address.")
		preserveEmail(c, req.Email)
		return c.Redirect(http.StatusSeeOther, "/auth/signup")
	}

	if err := h.issuer.Issue(c.Request().Context(), req.Email); err != nil {
		var f *domain.Failure
		if errors.As(err, &f) {
			slog.Warn("Failed to issue confirmation code", "email", req.Email, "error", err)
		} else {
			slog.Error("Failed to issue confirmation code", "email", req.Email, "error", err)
		}
		view.SetFlashError(c, domain.FailureMessage(err))
		preserveEmail(c, req.Email)
		return c.Redirect(http.StatusSeeOther, "/auth/signup")
	}

	machine := authstate.NewMachine(c, h.publisher)
	if err := machine.RequestTransition(c.Request().Context(), authstate.ConfirmSignUp, authstate.Data{Username: req.Email}); err != nil {
		return err
	}
	view.SetFlashSuccess(c, "We sent a confirmation code to "+req.Email+".")
	return c.Redirect(http.StatusSeeOther, "/auth/confirm")
}

// LoginGet renders the sign-in page (GET /auth/login).
func (h *AuthHandler) LoginGet(c echo.Context) error {
	machine := authstate.NewMachine(c, h.publisher)
	if machine.Current() == authstate.SignedIn {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return view.Render(c, http.StatusOK, layouts.Base("Sign In", "", view.GetFlashData(c), pages.Login()))
}

// Logout returns the session to the sign-in state (GET /auth/logout).
func (h *AuthHandler) Logout(c echo.Context) error {
	machine := authstate.NewMachine(c, h.publisher)
	if err := machine.RequestTransition(c.Request().Context(), authstate.SignIn, nil); err != nil {
		return err
	}
	view.SetFlashSuccess(c, "You have been signed out.")
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

// HomeGet renders the landing page for signed-in users (GET /).
// The route is expected behind middleware.RequireState(SignedIn).
func (h *AuthHandler) HomeGet(c echo.Context) error {
	machine := authstate.NewMachine(c, h.publisher)
	page := pages.Home(auth.HomeData{Username: machine.Data().Username})
	return view.Render(c, http.StatusOK, layouts.Base("Home", "", view.GetFlashData(c), page))
}

// preserveEmail keeps the submitted email for the next render of the sign-up form.
func preserveEmail(c echo.Context, email string) {
	sess, err := session.Get("flash-session", c)
	if err != nil {
		return
	}
	sess.AddFlash(email, "form_email")
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
}
