package domain

import "errors"

// ErrVerifierMissing indicates the confirmation flow was started without a
// verification backend. This is a wiring mistake in the host, not a user error.
var ErrVerifierMissing = errors.New("no verification backend configured")

// Failure is a backend rejection that carries a user-facing message.
type Failure struct {
	Message string
	Err     error
}

// NewFailure creates a Failure with the given message.
func NewFailure(message string) *Failure {
	return &Failure{Message: message}
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// PlainFailure is a backend rejection reported as a bare string, without any
// surrounding error structure.
type PlainFailure string

func (p PlainFailure) Error() string { return string(p) }

// FailureMessage extracts the user-facing text of a backend rejection.
// A bare string is used as-is; a Failure contributes its Message; anything
// else falls back to Error().
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	var plain PlainFailure
	if errors.As(err, &plain) {
		return string(plain)
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}
