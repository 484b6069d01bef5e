package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvariantViolation marks a call that would break an engine invariant.
	// Such calls are refused without mutating anything.
	ErrInvariantViolation = errors.New("invariant violation")

	ErrUnknownShapeKind = errors.New("unknown shape kind")
	ErrUnknownEventKind = errors.New("unknown event kind")
	ErrShapeNotFound    = errors.New("shape not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrTooManySessions  = errors.New("too many sessions")
)

// ValidationError is a recoverable, user-facing rejection. The session is left
// exactly as it was so drawing can continue.
type ValidationError struct {
	Mode   Mode
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Mode, e.Reason)
}
