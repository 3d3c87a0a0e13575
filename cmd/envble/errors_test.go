package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/envble/internal/stack"
)

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"nil", nil, ""},
		{"not enabled", stack.ErrNotEnabled, "not enabled"},
		{"wrapped not enabled", fmt.Errorf("publish: %w", stack.ErrNotEnabled), "not enabled"},
		{"already enabled", stack.ErrAlreadyEnabled, "already enabled"},
		{"disabled", stack.ErrDisabled, "shut down"},
		{"radio lost", ErrRadioLost, "restart"},
		{"plain error", errors.New("something broke"), "something broke"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FormatUserError(tt.err)
			if tt.contains == "" {
				assert.Empty(t, msg)
			} else {
				assert.Contains(t, msg, tt.contains)
			}
		})
	}
}
