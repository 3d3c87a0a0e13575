// Package stackfactory selects the radio stack backend by name.
package stackfactory

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/srg/envble/internal/stack"
	"github.com/srg/envble/internal/stack/goble"
	"github.com/srg/envble/internal/stack/memstack"
)

// Backend names accepted by New.
const (
	BackendGoBLE = "goble"
	BackendMem   = "mem"
)

// New creates a stack for the named backend. This is a variable so that it
// can be overridden in tests.
var New = func(backend string, logger *logrus.Logger) (stack.Stack, error) {
	switch backend {
	case BackendGoBLE, "":
		return goble.New(logger), nil
	case BackendMem:
		return memstack.New(), nil
	default:
		return nil, fmt.Errorf("unknown stack backend %q (must be %q or %q)", backend, BackendGoBLE, BackendMem)
	}
}
