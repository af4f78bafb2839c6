package pages

import (
	"github.com/nfrund/confirmflow/internal/view/dto/auth"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// SignUp renders the entry step that sends a confirmation code.
func SignUp(data auth.SignUpData) g.Node {
	return h.Section(
		h.H1(g.Text("Sign Up")),
		h.FormEl(
			h.Class("auth-form auth-form-signup"),
			h.Method("post"),
			h.Action("/auth/signup"),
			h.Div(
				h.Class("form-item"),
				h.Input(h.Type("email"), h.Name("email"), h.Placeholder("Email"), h.Value(data.Email), h.Required()),
			),
			h.Button(h.Type("submit"), h.Class("btn btn-primary confirm-full-width"), g.Text("Send code")),
		),
		h.P(g.Text("Already have an account? "), h.A(h.Href("/auth/login"), g.Text("Sign In"))),
	)
}
