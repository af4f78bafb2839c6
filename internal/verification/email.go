package verification

import (
	"strings"
	"time"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

const codeSubject = "Your confirmation code"

// codeEmail renders the message that delivers a confirmation code.
func codeEmail(code string, ttl time.Duration) (string, string, error) {
	body := h.Div(
		h.P(g.Text("Use the code below to confirm your account:")),
		h.P(h.Style("font-size:24px;letter-spacing:4px"), h.Strong(g.Text(code))),
		h.P(g.Textf("The code expires in %s. If you did not sign up, you can ignore this email.", ttl)),
	)
	var b strings.Builder
	if err := body.Render(&b); err != nil {
		return "", "", err
	}
	return codeSubject, b.String(), nil
}
