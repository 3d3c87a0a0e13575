package peripheral

import (
	"bytes"
	"fmt"
)

// CommandBlink is the only recognized command token. The command channel
// compares raw UTF-8 bytes exactly; anything else is discarded.
const CommandBlink = "blink"

// BlinkRepeat is the fixed number of blink cycles per command.
const BlinkRepeat = 3

// PollCommand reads the command characteristic and acts on its content. A
// recognized command triggers the actuator synchronously: the call blocks
// until all blink cycles complete, so it must never be made from the
// stack's event context. Afterwards the channel is cleared back to the
// 4-byte zero value unconditionally, recognized or not, so the same
// command is not re-triggered on the next poll. Unrecognized non-empty
// content is discarded without signaling the writer; a command written
// between two polls that is not recognized is silently lost. That matches
// the channel's fire-and-forget contract and is a known limitation.
func (p *Peripheral) PollCommand() error {
	if !p.initialized.Load() {
		return fmt.Errorf("peripheral not initialized")
	}

	value, err := p.stk.Read(p.commandHandle)
	if err != nil {
		return fmt.Errorf("reading command channel: %w", err)
	}

	switch {
	case bytes.Equal(value, []byte(CommandBlink)):
		p.logger.WithField("command", CommandBlink).Info("Executing command")
		for i := 0; i < BlinkRepeat; i++ {
			if err := p.blinker.Blink(); err != nil {
				p.logger.WithError(err).WithField("cycle", i+1).Warn("Blink failed")
			}
		}

	case len(value) == 0 || bytes.Equal(value, ClearValue()):
		// Channel is idle; nothing was written since the last clear.

	default:
		p.logger.WithField("bytes", len(value)).Debug("Discarding unrecognized command")
	}

	if err := p.stk.Write(p.commandHandle, ClearValue()); err != nil {
		p.logger.WithError(err).Debug("Command channel clear failed")
	}
	return nil
}
