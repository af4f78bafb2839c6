package domain

// EmailSender delivers the HTML messages that carry confirmation codes.
// internal/email provides a logging sender for development and one backed by
// the Resend API.
type EmailSender interface {
	Send(to, subject, htmlBody string) error
}
