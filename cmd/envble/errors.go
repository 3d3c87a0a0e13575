package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/srg/envble/internal/stack"
)

// Command-level errors
var (
	// ErrRadioLost indicates the radio stack became unusable while serving.
	// This is distinct from stack.ErrNotEnabled, which indicates an attempt
	// to use a stack that was never enabled.
	ErrRadioLost = errors.New("radio lost")
)

// FormatUserError converts internal errors into messages suitable for the
// terminal, without Go error-chain noise.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var serr *stack.StateError
	if errors.As(err, &serr) {
		switch serr.State {
		case stack.NotEnabled:
			return "radio is not enabled; was the peripheral initialized?"
		case stack.AlreadyEnabled:
			return "radio is already enabled"
		case stack.Disabled:
			return "radio was shut down and cannot be reused"
		}
	}

	if errors.Is(err, ErrRadioLost) {
		return "radio lost; check the Bluetooth controller and restart"
	}

	if errors.Is(err, os.ErrPermission) {
		return fmt.Sprintf("%s (try running with elevated privileges)", err)
	}

	return err.Error()
}
