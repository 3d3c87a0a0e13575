// Package testutils holds shared helpers for package tests.
package testutils

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

// TestHelper bundles a testing.T with a logger suitable for tests.
type TestHelper struct {
	T      *testing.T
	Logger *logrus.Logger
}

// NewTestHelper creates a test helper with a debug-level logger so that
// execution flow shows up in -v output.
func NewTestHelper(t *testing.T) *TestHelper {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	return &TestHelper{
		T:      t,
		Logger: logger,
	}
}

// NewQuietLogger returns a logger that discards everything, for tests
// where log output is noise.
func NewQuietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
