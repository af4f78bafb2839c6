// Package confirm implements the sign-up confirmation step: it gathers the
// identifier and one-time code, validates them, drives the confirm and resend
// calls against the verification backend and asks the host auth-state machine
// to move on once the code is accepted.
package confirm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/confirmflow/internal/authstate"
	"github.com/nfrund/confirmflow/internal/domain"
)

// ResendLabelKey is the localization key of the resend affordance.
const ResendLabelKey = "Resend Code"

// Host is the auth-state machine surrounding the confirmation step.
type Host interface {
	RequestTransition(ctx context.Context, target authstate.State, payload any) error
	// ExternalIdentifier returns an identifier the host already knows, or "".
	ExternalIdentifier() string
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Error(message string)
}

// Localizer resolves display strings.
type Localizer interface {
	Lookup(key string) string
}

// Dependencies holds the collaborators of a Controller. Verifier may be nil,
// in which case Confirm and Resend fail with domain.ErrVerifierMissing.
type Dependencies struct {
	Verifier  domain.Verifier
	Host      Host
	Notifier  Notifier
	Localizer Localizer
	Logger    *slog.Logger
}

// Controller owns the transient state of one confirmation form.
// It is not safe for concurrent use.
type Controller struct {
	verifier  domain.Verifier
	host      Host
	notifier  Notifier
	localizer Localizer
	logger    *slog.Logger
	overrides Overrides

	inputs  map[string]string
	loading bool
}

// New creates a Controller. Host and Notifier are required.
func New(deps Dependencies, overrides Overrides) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		verifier:  deps.Verifier,
		host:      deps.Host,
		notifier:  deps.Notifier,
		localizer: deps.Localizer,
		logger:    logger,
		overrides: overrides,
		inputs:    make(map[string]string),
	}
}

// Loading reports whether a confirm or resend call is in flight.
func (c *Controller) Loading() bool { return c.loading }

func (c *Controller) setLoading(v bool) { c.loading = v }

// HandleInputChange records the latest value of a form field.
func (c *Controller) HandleInputChange(name, value string) {
	c.inputs[name] = value
}

// Value returns the value to display for a field. A prefilled identifier
// always wins over anything typed.
func (c *Controller) Value(name string) string {
	if name == IdentifierName {
		return c.Identifier()
	}
	return c.inputs[name]
}

// Identifier resolves the account being confirmed: the externally supplied
// identifier if there is one, otherwise the typed value.
func (c *Controller) Identifier() string {
	if ext := c.external(); ext != "" {
		return ext
	}
	return c.inputs[IdentifierName]
}

func (c *Controller) external() string {
	if c.host == nil {
		return ""
	}
	return c.host.ExternalIdentifier()
}

// IdentifierConfig returns the merged options of the identifier field.
func (c *Controller) IdentifierConfig() Options {
	return BuildConfig(IdentifierField, identifierDefaults(), c.overrides.Identifier, Options{
		OptOnChange: ChangeHandler(c.HandleInputChange),
		OptName:     IdentifierName,
		OptDisabled: c.external() != "",
	})
}

// CodeConfig returns the merged options of the code field.
func (c *Controller) CodeConfig() Options {
	return BuildConfig(CodeField, codeDefaults(), c.overrides.Code, Options{
		OptOnChange: ChangeHandler(c.HandleInputChange),
		OptName:     CodeName,
	})
}

// SubmitConfig returns the merged options of the submit button.
func (c *Controller) SubmitConfig() Options {
	return BuildConfig(SubmitField, submitDefaults(), c.overrides.Submit, Options{
		OptClassName: joinClassNames(FullWidthClass, c.overrides.Submit[OptClassName]),
		OptLoading:   c.loading,
		OptDisabled:  c.loading,
		OptHTMLType:  "submit",
	})
}

// ResendLabel returns the localized label of the resend affordance.
func (c *Controller) ResendLabel() string {
	if c.localizer == nil {
		return ResendLabelKey
	}
	return c.localizer.Lookup(ResendLabelKey)
}

// Validate checks both fields against the messages of their merged configs.
func (c *Controller) Validate() Validation {
	return Validation{
		Identifier: ValidateIdentifier(c.Identifier(), c.IdentifierConfig().String(OptMessage)),
		Code:       ValidateCode(c.inputs[CodeName], c.CodeConfig().String(OptMessage)),
	}
}

// Submit validates the form and, when it is valid, confirms the code.
// Validation failures are returned in the Validation value, not as an error.
func (c *Controller) Submit(ctx context.Context) (Validation, error) {
	v := c.Validate()
	if !v.OK() {
		return v, nil
	}
	c.logger.Debug("Received confirmation form", "identifier", c.Identifier())
	return v, c.Confirm(ctx)
}

// Confirm sends the identifier and code to the verification backend. On
// success the host is asked to move to SignedIn with the backend payload; on
// failure the backend message is shown and the form is left as it was.
// The only errors returned are a missing backend and a failed transition.
func (c *Controller) Confirm(ctx context.Context) error {
	identifier := c.Identifier()
	code := c.inputs[CodeName]
	if c.verifier == nil {
		return fmt.Errorf("confirm: %w", domain.ErrVerifierMissing)
	}

	c.setLoading(true)
	result, err := c.verifier.ConfirmCode(ctx, identifier, code)
	c.setLoading(false)
	if err != nil {
		c.logger.Warn("Confirmation rejected", "identifier", identifier, "error", err)
		c.notifier.Error(domain.FailureMessage(err))
		return nil
	}

	return c.host.RequestTransition(ctx, authstate.SignedIn, result)
}

// Resend asks the backend to issue a new code. Success is silent.
func (c *Controller) Resend(ctx context.Context) error {
	identifier := c.Identifier()
	if c.verifier == nil {
		return fmt.Errorf("resend: %w", domain.ErrVerifierMissing)
	}

	c.setLoading(true)
	err := c.verifier.ResendCode(ctx, identifier)
	c.setLoading(false)
	if err != nil {
		c.logger.Warn("Resend rejected", "identifier", identifier, "error", err)
		c.notifier.Error(domain.FailureMessage(err))
	}
	return nil
}

// Back returns to the sign-in state without contacting the backend.
func (c *Controller) Back(ctx context.Context) error {
	return c.host.RequestTransition(ctx, authstate.SignIn, nil)
}
