package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/confirmflow/internal/authstate"
	"github.com/nfrund/confirmflow/internal/confirm"
	"github.com/nfrund/confirmflow/internal/domain"
	"github.com/nfrund/confirmflow/internal/i18n"
	"github.com/nfrund/confirmflow/internal/middleware"
	"github.com/nfrund/confirmflow/internal/pubsub"
	"github.com/nfrund/confirmflow/internal/view"
	"github.com/nfrund/confirmflow/internal/view/dto/auth"
	"github.com/nfrund/confirmflow/web/src/templates/layouts"
	"github.com/nfrund/confirmflow/web/src/templates/pages"
)

// ConfirmHandler serves the sign-up confirmation step. Apart from ConfirmStart
// and BackGet, its routes are expected behind middleware.RequireState(ConfirmSignUp).
type ConfirmHandler struct {
	verifier  domain.Verifier
	publisher pubsub.Publisher
	catalog   *i18n.Catalog
	overrides confirm.Overrides
}

// NewConfirmHandler creates a new ConfirmHandler. A nil verifier is accepted
// so that a miswired host fails on first use rather than at startup.
func NewConfirmHandler(verifier domain.Verifier, publisher pubsub.Publisher, catalog *i18n.Catalog, overrides confirm.Overrides) *ConfirmHandler {
	return &ConfirmHandler{
		verifier:  verifier,
		publisher: publisher,
		catalog:   catalog,
		overrides: overrides,
	}
}

// confirmRequest bundles the per-request collaborators of the form.
type confirmRequest struct {
	ctrl      *confirm.Controller
	machine   *authstate.Machine
	localizer *i18n.Localizer
}

func (h *ConfirmHandler) newRequest(c echo.Context) confirmRequest {
	machine := authstate.NewMachine(c, h.publisher)
	localizer := h.catalog.Localizer(c.Request().Header.Get("Accept-Language"))
	ctrl := confirm.New(confirm.Dependencies{
		Verifier:  h.verifier,
		Host:      machine,
		Notifier:  view.NewNotifier(c),
		Localizer: localizer,
		Logger:    middleware.FromContext(c.Request().Context()),
	}, h.overrides)
	return confirmRequest{ctrl: ctrl, machine: machine, localizer: localizer}
}

// bind feeds submitted values through each field's change handler.
func bind(c echo.Context, ctrl *confirm.Controller) {
	for _, cfg := range []confirm.Options{ctrl.IdentifierConfig(), ctrl.CodeConfig()} {
		name := cfg.String(confirm.OptName)
		if onChange := cfg.ChangeHandler(); onChange != nil {
			onChange(name, c.FormValue(name))
		}
	}
}

// ConfirmGet renders the confirmation form (GET /auth/confirm).
func (h *ConfirmHandler) ConfirmGet(c echo.Context) error {
	req := h.newRequest(c)
	return h.render(c, http.StatusOK, req, confirm.Validation{})
}

// ConfirmStart enters the confirmation step without a known identifier (GET /auth/confirm/start).
func (h *ConfirmHandler) ConfirmStart(c echo.Context) error {
	machine := authstate.NewMachine(c, h.publisher)
	if machine.Current() == authstate.SignedIn {
		return redirectTo(c, authstate.PathFor(authstate.SignedIn))
	}
	if err := machine.RequestTransition(c.Request().Context(), authstate.ConfirmSignUp, nil); err != nil {
		return err
	}
	return redirectTo(c, authstate.PathFor(authstate.ConfirmSignUp))
}

// ConfirmPost validates the form and confirms the code (POST /auth/confirm).
func (h *ConfirmHandler) ConfirmPost(c echo.Context) error {
	req := h.newRequest(c)
	bind(c, req.ctrl)

	validation, err := req.ctrl.Submit(c.Request().Context())
	if err != nil {
		return err
	}
	if target, ok := req.machine.Requested(); ok {
		if target == authstate.SignedIn {
			view.SetFlashSuccess(c, "Your account has been confirmed.")
		}
		return redirectTo(c, authstate.PathFor(target))
	}

	status := http.StatusOK
	if !validation.OK() && !view.IsHTMX(c) {
		status = http.StatusUnprocessableEntity
	}
	return h.render(c, status, req, validation)
}

// ResendPost asks the backend for a new code (POST /auth/confirm/resend).
func (h *ConfirmHandler) ResendPost(c echo.Context) error {
	req := h.newRequest(c)
	bind(c, req.ctrl)

	if err := req.ctrl.Resend(c.Request().Context()); err != nil {
		return err
	}
	return h.render(c, http.StatusOK, req, confirm.Validation{})
}

// BackGet returns to the sign-in step (GET /auth/confirm/back).
func (h *ConfirmHandler) BackGet(c echo.Context) error {
	req := h.newRequest(c)
	if err := req.ctrl.Back(c.Request().Context()); err != nil {
		return err
	}
	return redirectTo(c, authstate.PathFor(authstate.SignIn))
}

func (h *ConfirmHandler) render(c echo.Context, status int, req confirmRequest, v confirm.Validation) error {
	ctrl := req.ctrl
	data := auth.ConfirmData{
		Identifier: auth.Field{
			Options: ctrl.IdentifierConfig(),
			Value:   ctrl.Value(confirm.IdentifierName),
			Error:   v.Identifier.Message,
		},
		Code: auth.Field{
			Options: ctrl.CodeConfig(),
			Value:   ctrl.Value(confirm.CodeName),
			Error:   v.Code.Message,
		},
		Submit:      ctrl.SubmitConfig(),
		ResendLabel: ctrl.ResendLabel(),
		BackPrefix:  req.localizer.Lookup("Back to"),
		BackLabel:   req.localizer.Lookup("Sign In"),
		Flashes:     view.GetFlashData(c),
	}

	if view.IsHTMX(c) {
		return view.Render(c, status, pages.ConfirmForm(data))
	}
	title := req.localizer.Lookup("Confirm Sign Up")
	return view.Render(c, status, layouts.Base(title, req.localizer.Language(), view.FlashData{}, pages.ConfirmSignUp(title, data)))
}

// redirectTo sends the browser to path, using HX-Redirect for htmx requests.
func redirectTo(c echo.Context, path string) error {
	if view.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", path)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, path)
}

var _ confirm.Host = (*authstate.Machine)(nil)
