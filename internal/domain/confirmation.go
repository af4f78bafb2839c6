package domain

import (
	"context"
	"time"
)

// Confirmation is the success payload returned by the verification backend
// once a confirmation code has been accepted.
type Confirmation struct {
	Username    string    `json:"username"`
	ConfirmedAt time.Time `json:"confirmedAt"`
}

// Verifier is the identity-verification backend consumed by the confirmation flow.
// A rejected call returns an error whose message is meant for the user, see FailureMessage.
type Verifier interface {
	ConfirmCode(ctx context.Context, identifier, code string) (*Confirmation, error)
	ResendCode(ctx context.Context, identifier string) error
}
