package auth

import (
	"github.com/nfrund/confirmflow/internal/confirm"
	"github.com/nfrund/confirmflow/internal/view"
)

// Field is the view model of one input: its merged options, the value to
// show and an inline validation message.
type Field struct {
	Options confirm.Options
	Value   string
	Error   string
}

// ConfirmData is the view model of the sign-up confirmation form.
type ConfirmData struct {
	Identifier  Field
	Code        Field
	Submit      confirm.Options
	ResendLabel string
	BackPrefix  string
	BackLabel   string
	Flashes     view.FlashData
}

// SignUpData is used to transfer a pre-filled email to the sign-up template.
type SignUpData struct {
	Email string
}

// HomeData describes the signed-in landing page.
type HomeData struct {
	Username string
}
