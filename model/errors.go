package model

import (
	"errors"
	"fmt"
)

// Validation errors are detected before any remote call is made and terminate
// the turn with a non-zero status.
var (
	// ErrModeConflict means more than one of the mutually exclusive mode
	// flags (shell, describe-shell, code) was requested for one call.
	ErrModeConflict = errors.New("only one of the shell, describe-shell and code modes can be used")

	// ErrRoleNotFound means an explicitly named role has no stored or
	// builtin definition.
	ErrRoleNotFound = errors.New("role not found")

	// ErrRoleModeConflict means a session is already bound to a role whose
	// expect variant is incompatible with the requested mode.
	ErrRoleModeConflict = errors.New("session role is incompatible with requested mode")
)

// SessionCorruptError marks a persisted session that cannot be decoded. The
// session is treated as unreadable rather than silently truncated.
type SessionCorruptError struct {
	ID  string
	Err error
}

func (e *SessionCorruptError) Error() string {
	return fmt.Sprintf("session %q is corrupted: %v", e.ID, e.Err)
}

func (e *SessionCorruptError) Unwrap() error { return e.Err }
