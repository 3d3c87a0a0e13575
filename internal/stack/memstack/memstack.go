// Package memstack is an in-memory implementation of the stack boundary.
// It backs the simulated serve mode and the package tests: registrations,
// value writes, notifications, indications and advertise calls are all
// recorded and inspectable, and connect/disconnect/remote-write activity
// can be injected as if it came from the radio.
package memstack

import (
	"fmt"
	"sync"

	"github.com/srg/envble/internal/stack"
)

// Delivery records one notify or indicate call.
type Delivery struct {
	Conn   stack.ConnID
	Handle stack.ValueHandle
}

// Stack is an in-memory radio stack. The zero value is not usable; create
// instances with New.
type Stack struct {
	mu sync.Mutex

	enabled  bool
	disabled bool
	handler  stack.EventHandler

	service *stack.Service
	values  map[stack.ValueHandle][]byte

	advertising bool
	advertises  []stack.AdvertiseOptions

	conns     map[stack.ConnID]struct{}
	notifies  []Delivery
	indicates []Delivery

	// Error injection for failure-path tests. A set field makes the
	// corresponding operation fail with that error.
	FailEnable   error
	FailRegister error
	FailWrite    error
	FailRead     error
	FailNotify   error
	FailIndicate error
}

// New creates an empty in-memory stack.
func New() *Stack {
	return &Stack{
		values: make(map[stack.ValueHandle][]byte),
		conns:  make(map[stack.ConnID]struct{}),
	}
}

// Enable implements stack.Stack.
func (s *Stack) Enable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailEnable != nil {
		return s.FailEnable
	}
	if s.disabled {
		return stack.ErrDisabled
	}
	if s.enabled {
		return stack.ErrAlreadyEnabled
	}
	s.enabled = true
	return nil
}

// Disable implements stack.Stack.
func (s *Stack) Disable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = false
	s.disabled = true
	s.advertising = false
	return nil
}

// SetEventHandler implements stack.Stack.
func (s *Stack) SetEventHandler(h stack.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// RegisterService implements stack.Stack. Handles are assigned
// sequentially starting at 1, in registration order.
func (s *Stack) RegisterService(svc *stack.Service) ([]stack.ValueHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRegister != nil {
		return nil, s.FailRegister
	}
	if !s.enabled {
		return nil, stack.ErrNotEnabled
	}
	if s.service != nil {
		return nil, fmt.Errorf("service already registered")
	}

	s.service = svc
	handles := make([]stack.ValueHandle, svc.Len())
	for i := range handles {
		h := stack.ValueHandle(i + 1)
		handles[i] = h
		s.values[h] = nil
	}
	return handles, nil
}

// Write implements stack.Stack.
func (s *Stack) Write(h stack.ValueHandle, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrite != nil {
		return s.FailWrite
	}
	if _, ok := s.values[h]; !ok {
		return stack.ErrInvalidHandle
	}
	s.values[h] = append([]byte(nil), value...)
	return nil
}

// Read implements stack.Stack.
func (s *Stack) Read(h stack.ValueHandle) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRead != nil {
		return nil, s.FailRead
	}
	v, ok := s.values[h]
	if !ok {
		return nil, stack.ErrInvalidHandle
	}
	return append([]byte(nil), v...), nil
}

// Notify implements stack.Stack.
func (s *Stack) Notify(conn stack.ConnID, h stack.ValueHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNotify != nil {
		return s.FailNotify
	}
	if _, ok := s.conns[conn]; !ok {
		return stack.ErrNoSuchConnection
	}
	if _, ok := s.values[h]; !ok {
		return stack.ErrInvalidHandle
	}
	s.notifies = append(s.notifies, Delivery{Conn: conn, Handle: h})
	return nil
}

// Indicate implements stack.Stack. The acknowledgment event is delivered
// synchronously before Indicate returns.
func (s *Stack) Indicate(conn stack.ConnID, h stack.ValueHandle) error {
	s.mu.Lock()
	if s.FailIndicate != nil {
		s.mu.Unlock()
		return s.FailIndicate
	}
	if _, ok := s.conns[conn]; !ok {
		s.mu.Unlock()
		return stack.ErrNoSuchConnection
	}
	if _, ok := s.values[h]; !ok {
		s.mu.Unlock()
		return stack.ErrInvalidHandle
	}
	s.indicates = append(s.indicates, Delivery{Conn: conn, Handle: h})
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		handler(stack.Event{
			Kind:   stack.EventIndicateDone,
			Conn:   conn,
			Handle: h,
			Status: stack.IndicateStatusOK,
		})
	}
	return nil
}

// Advertise implements stack.Stack.
func (s *Stack) Advertise(opts stack.AdvertiseOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return stack.ErrNotEnabled
	}
	s.advertising = true
	s.advertises = append(s.advertises, opts)
	return nil
}

// StopAdvertising implements stack.Stack.
func (s *Stack) StopAdvertising() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advertising = false
	return nil
}

// SimulateConnect injects a central connection and delivers the connect
// event the way the radio would: synchronously, on the caller's goroutine.
func (s *Stack) SimulateConnect(conn stack.ConnID) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		handler(stack.Event{Kind: stack.EventCentralConnect, Conn: conn})
	}
}

// SimulateDisconnect injects a disconnect for the connection. The event is
// delivered even if the connection is unknown, matching the duplicate
// disconnect behavior of real stacks.
func (s *Stack) SimulateDisconnect(conn stack.ConnID) {
	s.mu.Lock()
	delete(s.conns, conn)
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		handler(stack.Event{Kind: stack.EventCentralDisconnect, Conn: conn})
	}
}

// SimulateEvent delivers an arbitrary event to the registered handler.
func (s *Stack) SimulateEvent(ev stack.Event) {
	s.mu.Lock()
	handler := s.handler
	s.mu.Unlock()

	if handler != nil {
		handler(ev)
	}
}

// SimulateCentralWrite stores a value as if a remote central wrote it.
func (s *Stack) SimulateCentralWrite(h stack.ValueHandle, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[h]; !ok {
		return stack.ErrInvalidHandle
	}
	s.values[h] = append([]byte(nil), value...)
	return nil
}

// Value returns a copy of the stored value for the handle.
func (s *Stack) Value(h stack.ValueHandle) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.values[h]...)
}

// Notifications returns a copy of the recorded notify calls, in order.
func (s *Stack) Notifications() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Delivery(nil), s.notifies...)
}

// Indications returns a copy of the recorded indicate calls, in order.
func (s *Stack) Indications() []Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Delivery(nil), s.indicates...)
}

// AdvertiseCalls returns the recorded advertise calls, in order.
func (s *Stack) AdvertiseCalls() []stack.AdvertiseOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]stack.AdvertiseOptions(nil), s.advertises...)
}

// Advertising reports whether advertising is currently running.
func (s *Stack) Advertising() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advertising
}

// Enabled reports whether the radio is powered on.
func (s *Stack) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Service returns the registered service schema, or nil.
func (s *Stack) Service() *stack.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.service
}
