package pages

import (
	"github.com/nfrund/confirmflow/internal/view/dto/auth"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Login is the sign-in landing page reached from the confirmation step.
func Login() g.Node {
	return h.Section(
		h.H1(g.Text("Sign In")),
		h.P(g.Text("Password sign-in is handled by your identity provider.")),
		h.P(g.Text("New here? "), h.A(h.Href("/auth/signup"), g.Text("Create an account"))),
		h.P(g.Text("Have a code? "), h.A(h.Href("/auth/confirm/start"), g.Text("Confirm your account"))),
	)
}

// Home is the landing page for signed-in users.
func Home(data auth.HomeData) g.Node {
	return h.Section(
		h.H1(g.Text("Welcome")),
		h.P(g.Textf("You are signed in as %s.", data.Username)),
		h.P(h.A(h.Href("/auth/logout"), g.Text("Sign out"))),
	)
}
