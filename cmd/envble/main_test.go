package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		expected string
	}{
		{"dev version", "dev", "dev"},
		{"numeric version gets v prefix", "1.2.3", "v1.2.3"},
		{"already prefixed", "v1.2.3", "v1.2.3"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatVersion(tt.version))
		})
	}
}
