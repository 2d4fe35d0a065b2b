package machine

import "errors"

// Domain errors for the transaction state machine.
var (
	// ErrUnauthorized marks a privileged operation attempted outside an
	// admin session.
	ErrUnauthorized = errors.New("unauthorized: admin session required")

	// ErrInvalidTransition marks a command that is not valid in the
	// current state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrWrongAmount is non-fatal: the state is unchanged and the caller
	// may retry with the exact price.
	ErrWrongAmount = errors.New("wrong amount inserted")
)
