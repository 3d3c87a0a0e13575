package stack

import (
	"errors"
	"fmt"
)

// State represents the specific kind of stack state failure.
type State string

const (
	NotEnabled     State = "not_enabled"
	AlreadyEnabled State = "already_enabled"
	Disabled       State = "disabled"
)

// StateError represents any radio state related problem.
type StateError struct {
	State State
	Msg   string
}

// Error implements the error interface
func (e *StateError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare StateError values by State
func (e *StateError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*StateError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for stack states
var (
	ErrNotEnabled     = &StateError{State: NotEnabled}
	ErrAlreadyEnabled = &StateError{State: AlreadyEnabled}
	ErrDisabled       = &StateError{State: Disabled}
)

// Operation errors
var (
	// ErrInvalidHandle reports an operation on a handle that was never
	// returned by RegisterService.
	ErrInvalidHandle = errors.New("invalid value handle")

	// ErrNoSuchConnection reports a notify/indicate to a connection the
	// stack no longer tracks. Expected after a racing disconnect; callers
	// treat it as non-fatal.
	ErrNoSuchConnection = errors.New("no such connection")

	// ErrUnsupported reports an operation the backend cannot perform.
	ErrUnsupported = errors.New("unsupported")
)

// IsState reports whether err is a StateError with the given state.
func IsState(err error, state State) bool {
	var serr *StateError
	if errors.As(err, &serr) {
		return serr.State == state
	}
	return false
}
