package auth_errors

import "errors"

// Standard application domain errors related specifically to sign-up
// confirmation. The verification backend wraps them in a domain.Failure whose
// Message is what the user sees; callers match them with errors.Is.
var (
	// ErrNoPendingConfirmation indicates there is no unconfirmed sign-up for the
	// address, or it has already expired.
	ErrNoPendingConfirmation = errors.New("no pending confirmation")

	// ErrCodeMismatch indicates the submitted code does not match the one sent.
	ErrCodeMismatch = errors.New("confirmation code mismatch")

	// ErrAttemptsExceeded indicates too many wrong codes were submitted for the
	// pending confirmation.
	ErrAttemptsExceeded = errors.New("confirmation attempts exceeded")
)
