// Package goble implements the stack boundary on top of github.com/go-ble/ble,
// running a real GATT server over the Linux HCI socket.
//
// The go-ble server is callback driven: reads, writes and subscription
// opens arrive as handler invocations carrying the remote connection.
// This backend bridges that model to the event surface the peripheral core
// expects: the first attribute request from a remote address produces a
// central-connect event, the connection's HCI teardown produces a
// central-disconnect event, and notify/indicate calls are routed to the
// per-subscription notifiers the server hands out.
package goble

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/sirupsen/logrus"

	"github.com/srg/envble/internal/bledb"
	"github.com/srg/envble/internal/groutine"
	"github.com/srg/envble/internal/stack"
)

type subKey struct {
	conn     stack.ConnID
	handle   stack.ValueHandle
	indicate bool
}

// Backend is a stack.Stack backed by a go-ble GATT server.
type Backend struct {
	logger *logrus.Logger

	mu        sync.Mutex
	dev       *linux.Device
	enabled   bool
	disabled  bool
	handler   stack.EventHandler
	values    map[stack.ValueHandle][]byte
	svc       *stack.Service
	notifiers map[subKey]ble.Notifier
	tracked   map[stack.ConnID]ble.Conn
	advCancel context.CancelFunc
}

// New creates a backend. The logger may be nil.
func New(logger *logrus.Logger) *Backend {
	if logger == nil {
		logger = logrus.New()
	}
	return &Backend{
		logger:    logger,
		values:    make(map[stack.ValueHandle][]byte),
		notifiers: make(map[subKey]ble.Notifier),
		tracked:   make(map[stack.ConnID]ble.Conn),
	}
}

// Enable opens the HCI device.
func (b *Backend) Enable() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disabled {
		return stack.ErrDisabled
	}
	if b.enabled {
		return stack.ErrAlreadyEnabled
	}

	dev, err := linux.NewDevice()
	if err != nil {
		return fmt.Errorf("opening HCI device: %w", err)
	}
	b.dev = dev
	b.enabled = true
	return nil
}

// Disable stops advertising and releases the HCI device.
func (b *Backend) Disable() error {
	b.mu.Lock()
	dev := b.dev
	cancel := b.advCancel
	b.advCancel = nil
	b.dev = nil
	b.enabled = false
	b.disabled = true
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if dev != nil {
		return dev.Stop()
	}
	return nil
}

// SetEventHandler implements stack.Stack.
func (b *Backend) SetEventHandler(h stack.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = h
}

// RegisterService builds the go-ble service from the schema and installs
// it. Value handles are assigned in registration order.
func (b *Backend) RegisterService(svc *stack.Service) ([]stack.ValueHandle, error) {
	b.mu.Lock()
	if !b.enabled {
		b.mu.Unlock()
		return nil, stack.ErrNotEnabled
	}
	if b.svc != nil {
		b.mu.Unlock()
		return nil, fmt.Errorf("service already registered")
	}
	b.svc = svc
	dev := b.dev
	b.mu.Unlock()

	s := ble.NewService(ble.UUID16(svc.UUID))
	chars := svc.Characteristics()
	handles := make([]stack.ValueHandle, len(chars))

	for i, c := range chars {
		handle := stack.ValueHandle(i + 1)
		handles[i] = handle

		b.mu.Lock()
		b.values[handle] = nil
		b.mu.Unlock()

		bc := s.NewCharacteristic(ble.UUID16(c.UUID))
		if c.Props.Read() {
			bc.HandleRead(ble.ReadHandlerFunc(b.makeReadHandler(handle)))
		}
		if c.Props.Write() {
			bc.HandleWrite(ble.WriteHandlerFunc(b.makeWriteHandler(handle)))
		}
		if c.Props.Notify() {
			bc.HandleNotify(ble.NotifyHandlerFunc(b.makeSubHandler(handle, false)))
		}
		if c.Props.Indicate() {
			bc.HandleIndicate(ble.NotifyHandlerFunc(b.makeSubHandler(handle, true)))
		}

		b.logger.WithFields(logrus.Fields{
			"uuid":   bledb.ShortUUID(c.UUID),
			"name":   bledb.CharacteristicName16(c.UUID),
			"props":  c.Props.String(),
			"handle": handle,
		}).Debug("Registered characteristic")
	}

	if err := dev.AddService(s); err != nil {
		return nil, fmt.Errorf("adding GATT service %s: %w", bledb.ShortUUID(svc.UUID), err)
	}
	return handles, nil
}

func (b *Backend) makeReadHandler(h stack.ValueHandle) func(ble.Request, ble.ResponseWriter) {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		b.trackConn(req.Conn())

		b.mu.Lock()
		value := append([]byte(nil), b.values[h]...)
		b.mu.Unlock()

		if _, err := rsp.Write(value); err != nil {
			b.logger.WithError(err).WithField("handle", h).Debug("Read response failed")
		}
	}
}

func (b *Backend) makeWriteHandler(h stack.ValueHandle) func(ble.Request, ble.ResponseWriter) {
	return func(req ble.Request, rsp ble.ResponseWriter) {
		b.trackConn(req.Conn())

		b.mu.Lock()
		b.values[h] = append([]byte(nil), req.Data()...)
		b.mu.Unlock()
	}
}

// makeSubHandler returns the subscription handler for a characteristic.
// go-ble invokes it once per subscription and expects it to block for the
// subscription's lifetime.
func (b *Backend) makeSubHandler(h stack.ValueHandle, indicate bool) func(ble.Request, ble.Notifier) {
	return func(req ble.Request, n ble.Notifier) {
		conn := b.trackConn(req.Conn())
		key := subKey{conn: conn, handle: h, indicate: indicate}

		b.mu.Lock()
		b.notifiers[key] = n
		b.mu.Unlock()

		<-n.Context().Done()

		b.mu.Lock()
		delete(b.notifiers, key)
		b.mu.Unlock()
	}
}

// trackConn registers a connection on first sight, emitting the connect
// event and arming a watcher for the HCI teardown.
func (b *Backend) trackConn(c ble.Conn) stack.ConnID {
	id := stack.ConnID(c.RemoteAddr().String())

	b.mu.Lock()
	_, known := b.tracked[id]
	if !known {
		b.tracked[id] = c
	}
	handler := b.handler
	b.mu.Unlock()

	if known {
		return id
	}

	b.logger.WithField("conn", id).Info("Central connected")
	if handler != nil {
		handler(stack.Event{Kind: stack.EventCentralConnect, Conn: id})
	}

	groutine.Go(context.Background(), "conn-watch-"+string(id), func(ctx context.Context) {
		<-c.Disconnected()

		b.mu.Lock()
		delete(b.tracked, id)
		for key := range b.notifiers {
			if key.conn == id {
				delete(b.notifiers, key)
			}
		}
		h := b.handler
		b.mu.Unlock()

		b.logger.WithField("conn", id).Info("Central disconnected")
		if h != nil {
			h(stack.Event{Kind: stack.EventCentralDisconnect, Conn: id})
		}
	})
	return id
}

// Write implements stack.Stack.
func (b *Backend) Write(h stack.ValueHandle, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.values[h]; !ok {
		return stack.ErrInvalidHandle
	}
	b.values[h] = append([]byte(nil), value...)
	return nil
}

// Read implements stack.Stack.
func (b *Backend) Read(h stack.ValueHandle) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[h]
	if !ok {
		return nil, stack.ErrInvalidHandle
	}
	return append([]byte(nil), v...), nil
}

// Notify pushes the current value to the connection's notify subscription.
func (b *Backend) Notify(conn stack.ConnID, h stack.ValueHandle) error {
	return b.push(conn, h, false)
}

// Indicate pushes the current value to the connection's indicate
// subscription. go-ble waits for the ATT confirmation inside Write, so the
// indicate-done event is emitted as soon as the push returns.
func (b *Backend) Indicate(conn stack.ConnID, h stack.ValueHandle) error {
	err := b.push(conn, h, true)
	if err != nil {
		return err
	}

	b.mu.Lock()
	handler := b.handler
	b.mu.Unlock()
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

func (b *Backend) push(conn stack.ConnID, h stack.ValueHandle, indicate bool) error {
	b.mu.Lock()
	value, ok := b.values[h]
	if !ok {
		b.mu.Unlock()
		return stack.ErrInvalidHandle
	}
	value = append([]byte(nil), value...)
	n, subscribed := b.notifiers[subKey{conn: conn, handle: h, indicate: indicate}]
	b.mu.Unlock()

	if !subscribed {
		// Centrals that never wrote the CCCD, or that disconnected a
		// moment ago, have no notifier. Same failure class either way.
		return stack.ErrNoSuchConnection
	}
	if _, err := n.Write(value); err != nil {
		return fmt.Errorf("pushing value for handle %d: %w", h, err)
	}
	return nil
}

// Advertise starts (or restarts) advertising. The go-ble controller
// composes the advertising PDU from name and service list itself, so the
// pre-encoded payload bytes are not used here; the interval is managed by
// the controller's advertising parameters.
func (b *Backend) Advertise(opts stack.AdvertiseOptions) error {
	b.mu.Lock()
	if !b.enabled {
		b.mu.Unlock()
		return stack.ErrNotEnabled
	}
	if b.advCancel != nil {
		b.advCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.advCancel = cancel
	dev := b.dev
	b.mu.Unlock()

	uuids := make([]ble.UUID, len(opts.Services))
	for i, u := range opts.Services {
		uuids[i] = ble.UUID16(u)
	}

	groutine.Go(ctx, "advertise", func(ctx context.Context) {
		b.logger.WithFields(logrus.Fields{
			"name":     opts.Name,
			"interval": opts.Interval,
		}).Debug("Advertising")
		err := dev.AdvertiseNameAndServices(ctx, opts.Name, uuids...)
		if err != nil && ctx.Err() == nil {
			b.logger.WithError(err).Warn("Advertising stopped unexpectedly")
		}
	})
	return nil
}

// StopAdvertising implements stack.Stack.
func (b *Backend) StopAdvertising() error {
	b.mu.Lock()
	cancel := b.advCancel
	b.advCancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}
