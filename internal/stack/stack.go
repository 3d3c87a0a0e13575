// Package stack defines the boundary between the GATT peripheral core and
// the underlying BLE radio stack. A Stack owns the radio, the attribute
// table, and advertising; the core drives it through this interface and
// receives asynchronous stack events through a registered handler.
//
// Two implementations exist: goble (a real GATT server on top of
// github.com/go-ble/ble) and memstack (an in-memory stack for simulation
// and tests).
package stack

import "time"

// ConnID identifies a connected remote central. The value is opaque and
// stack-defined; it is only compared for equality and used as a map key.
type ConnID string

// ValueHandle identifies a registered characteristic value. Handles are
// assigned by the stack during service registration, in registration order,
// and stay valid for the lifetime of the stack.
type ValueHandle uint16

// AdvertiseOptions carries everything a stack needs to (re)start
// advertising. Payload is the pre-encoded advertising data; Name and
// Services duplicate the fields it was built from, for backends whose
// controller composes the advertising PDU itself.
type AdvertiseOptions struct {
	Interval time.Duration
	Payload  []byte
	Name     string
	Services []uint16
}

// EventHandler receives asynchronous stack events. It may be invoked from a
// stack-managed goroutine at any time relative to application calls into
// the Stack; implementations must be non-blocking.
type EventHandler func(Event)

// Stack is the radio stack surface consumed by the peripheral core.
type Stack interface {
	// Enable powers on the radio. It must be called before any other
	// operation.
	Enable() error

	// Disable releases the radio. The stack cannot be reused afterwards.
	Disable() error

	// SetEventHandler registers the handler for asynchronous events.
	// Must be called before Enable; later calls replace the handler.
	SetEventHandler(h EventHandler)

	// RegisterService installs the service schema into the attribute table
	// and returns one value handle per characteristic, in registration
	// order.
	RegisterService(svc *Service) ([]ValueHandle, error)

	// Write replaces the stored value for the handle. The value is visible
	// to subsequent Read calls and to remote reads.
	Write(h ValueHandle, value []byte) error

	// Read returns the most recently written value for the handle, whether
	// it was written locally or by a remote central.
	Read(h ValueHandle) ([]byte, error)

	// Notify pushes the current value of the handle to the given
	// connection without acknowledgment.
	Notify(conn ConnID, h ValueHandle) error

	// Indicate pushes the current value of the handle to the given
	// connection; the eventual acknowledgment (or timeout) surfaces as an
	// EventIndicateDone event.
	Indicate(conn ConnID, h ValueHandle) error

	// Advertise starts or restarts advertising with the given options.
	// Restarting while already advertising is not an error.
	Advertise(opts AdvertiseOptions) error

	// StopAdvertising stops advertising if it is running.
	StopAdvertising() error
}
