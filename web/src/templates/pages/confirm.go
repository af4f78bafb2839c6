package pages

import (
	"github.com/nfrund/confirmflow/internal/view/dto/auth"
	"github.com/nfrund/confirmflow/web/src/templates/components"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"
)

// ConfirmFormID is the element replaced by htmx responses of the confirmation form.
const ConfirmFormID = "confirm-form"

// ConfirmForm renders the confirmation form. It is also the fragment returned
// to htmx requests, so it carries its own notifications.
func ConfirmForm(data auth.ConfirmData) g.Node {
	return h.Div(
		h.ID(ConfirmFormID),
		components.Flashes(data.Flashes),
		h.FormEl(
			h.Class("auth-form auth-form-confirm"),
			h.Method("post"),
			h.Action("/auth/confirm"),
			hx.Post("/auth/confirm"),
			hx.Target("#"+ConfirmFormID),
			hx.Swap("outerHTML"),
			g.Attr("hx-disabled-elt", "find button"),
			components.Input(data.Identifier),
			components.Input(data.Code),
			h.Div(
				h.Class("form-row space-between"),
				h.Span(
					g.Text(data.BackPrefix+" "),
					h.A(h.Href("/auth/confirm/back"), g.Text(data.BackLabel)),
				),
				h.Span(
					h.Button(
						h.Type("submit"),
						h.Class("btn-link"),
						g.Attr("formaction", "/auth/confirm/resend"),
						g.Attr("formnovalidate"),
						hx.Post("/auth/confirm/resend"),
						g.Text(data.ResendLabel),
					),
				),
			),
			h.Div(
				h.Class("form-row"),
				components.SubmitButton(data.Submit),
			),
		),
	)
}

// ConfirmSignUp is the page content of the confirmation step.
func ConfirmSignUp(title string, data auth.ConfirmData) g.Node {
	return h.Section(
		h.H1(g.Text(title)),
		ConfirmForm(data),
	)
}
