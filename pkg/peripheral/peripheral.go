// Package peripheral implements the GATT peripheral core: the
// connection/advertising state machine and the characteristic
// read/write/notify/indicate protocol of the Environmental Sensing
// service.
//
// A Peripheral is constructed once at startup and owns the radio stack
// handle, the set of active connections, and the advertising payload. Two
// logical actors drive it: the application loop calls Publish, PollCommand
// and Advertise; the radio stack calls HandleEvent from its own callback
// context at any time relative to the application. The connection set is a
// lock-free map so that event-context mutations are single atomic
// insert/remove operations.
package peripheral

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/srg/envble/internal/actuator"
	"github.com/srg/envble/internal/bledb"
	"github.com/srg/envble/internal/eventlog"
	"github.com/srg/envble/internal/stack"
	"github.com/srg/envble/pkg/advertising"
)

// DefaultAdvertiseInterval mirrors the firmware default of 500ms.
const DefaultAdvertiseInterval = 500 * time.Millisecond

// Options configures a Peripheral.
type Options struct {
	// Name is the advertised device name.
	Name string

	// AdvertiseInterval is used for the initial advertise call and for
	// re-advertising after a disconnect.
	AdvertiseInterval time.Duration

	// EventLogCapacity bounds the diagnostic event capture ring.
	EventLogCapacity uint32
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Name:              "envble",
		AdvertiseInterval: DefaultAdvertiseInterval,
		EventLogCapacity:  64,
	}
}

// Peripheral is the GATT peripheral core.
type Peripheral struct {
	stk     stack.Stack
	blinker actuator.Blinker
	logger  *logrus.Logger
	opts    Options

	conns *hashmap.Map[stack.ConnID, struct{}]

	// Value handles by role, fixed after Initialize.
	temperatureHandle stack.ValueHandle
	pressureHandle    stack.ValueHandle
	humidityHandle    stack.ValueHandle
	commandHandle     stack.ValueHandle

	adv stack.AdvertiseOptions

	events           *eventlog.Log[stack.Event]
	indicateFailures atomic.Uint64
	initialized      atomic.Bool
}

// New creates a Peripheral. The stack must not be enabled yet; Initialize
// performs the whole startup sequence. logger may be nil.
func New(stk stack.Stack, blinker actuator.Blinker, logger *logrus.Logger, opts *Options) *Peripheral {
	if logger == nil {
		logger = logrus.New()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.AdvertiseInterval <= 0 {
		o.AdvertiseInterval = DefaultAdvertiseInterval
	}
	if o.EventLogCapacity == 0 {
		o.EventLogCapacity = 64
	}

	return &Peripheral{
		stk:     stk,
		blinker: blinker,
		logger:  logger,
		opts:    o,
		conns:   hashmap.New[stack.ConnID, struct{}](),
		events:  eventlog.New[stack.Event](o.EventLogCapacity),
	}
}

// Initialize activates the radio, registers the service schema, retains
// the returned value handles, computes the advertising payload, and issues
// the first advertise call. Any failure aborts startup; no partial radio
// state is retained.
func (p *Peripheral) Initialize() error {
	if !p.initialized.CompareAndSwap(false, true) {
		return fmt.Errorf("already initialized")
	}

	payload, err := advertising.Payload(advertising.Options{
		Name:       p.opts.Name,
		Services:   []uint16{ServiceEnvironmentalSensing},
		Appearance: AppearanceEnvironmentalSensor,
	})
	if err != nil {
		p.initialized.Store(false)
		return fmt.Errorf("encoding advertising payload: %w", err)
	}
	p.adv = stack.AdvertiseOptions{
		Interval: p.opts.AdvertiseInterval,
		Payload:  payload,
		Name:     p.opts.Name,
		Services: []uint16{ServiceEnvironmentalSensing},
	}

	p.stk.SetEventHandler(p.HandleEvent)

	if err := p.stk.Enable(); err != nil {
		p.initialized.Store(false)
		return fmt.Errorf("activating radio: %w", err)
	}

	handles, err := p.stk.RegisterService(EnvironmentalSensingService())
	if err != nil {
		p.abortInit()
		return fmt.Errorf("registering service %s: %w", bledb.ShortUUID(ServiceEnvironmentalSensing), err)
	}
	if len(handles) != 4 {
		p.abortInit()
		return fmt.Errorf("service registration returned %d handles, want 4", len(handles))
	}
	p.temperatureHandle = handles[0]
	p.pressureHandle = handles[1]
	p.humidityHandle = handles[2]
	p.commandHandle = handles[3]

	if err := p.stk.Advertise(p.adv); err != nil {
		p.abortInit()
		return fmt.Errorf("starting advertising: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"name":     p.opts.Name,
		"service":  bledb.ServiceName16(ServiceEnvironmentalSensing),
		"interval": p.opts.AdvertiseInterval,
	}).Info("Peripheral initialized, advertising")
	return nil
}

func (p *Peripheral) abortInit() {
	p.initialized.Store(false)
	if err := p.stk.Disable(); err != nil {
		p.logger.WithError(err).Debug("Radio release during aborted init failed")
	}
}

// HandleEvent is the single entry point for asynchronous stack events. It
// is safe to invoke from the stack's callback context and never blocks:
// connection set mutations are single lock-free operations and no actuator
// or other blocking work happens here.
func (p *Peripheral) HandleEvent(ev stack.Event) {
	p.events.Record(ev)

	switch ev.Kind {
	case stack.EventCentralConnect:
		// Idempotent: a duplicate connect event is a no-op.
		if p.conns.Insert(ev.Conn, struct{}{}) {
			p.logger.WithFields(logrus.Fields{
				"conn":        ev.Conn,
				"connections": p.conns.Len(),
			}).Info("Central connected")
		}

	case stack.EventCentralDisconnect:
		// Removing an absent identifier is benign; duplicate disconnect
		// events happen.
		p.conns.Del(ev.Conn)
		p.logger.WithFields(logrus.Fields{
			"conn":        ev.Conn,
			"connections": p.conns.Len(),
		}).Info("Central disconnected, resuming advertising")

		// Unconditional, even with other centrals still connected:
		// advertising while connected allows additional inbound
		// connections.
		if err := p.stk.Advertise(p.adv); err != nil {
			p.logger.WithError(err).Warn("Re-advertise after disconnect failed")
		}

	case stack.EventIndicateDone:
		if ev.Status != stack.IndicateStatusOK {
			p.indicateFailures.Add(1)
			p.logger.WithFields(logrus.Fields{
				"conn":   ev.Conn,
				"handle": ev.Handle,
				"status": ev.Status,
			}).Debug("Indication not acknowledged")
		}

	default:
		p.logger.WithField("event", ev.Kind).Debug("Ignoring unknown stack event")
	}
}

// Publish writes the three sensor values into the characteristic value
// store, regardless of connection state, then pushes them to every current
// connection: notifications if notify is set, indications if indicate is
// set. The flags are independent. Stack errors on individual pushes are
// expected (a central may have disconnected microseconds earlier) and are
// not propagated.
func (p *Peripheral) Publish(temperature, pressure, humidity float64, notify, indicate bool) error {
	if !p.initialized.Load() {
		return fmt.Errorf("peripheral not initialized")
	}

	values := []struct {
		handle stack.ValueHandle
		value  float64
	}{
		{p.temperatureHandle, temperature},
		{p.pressureHandle, pressure},
		{p.humidityHandle, humidity},
	}

	for _, v := range values {
		if err := p.stk.Write(v.handle, EncodeValue(v.value)); err != nil {
			p.logger.WithError(err).WithField("handle", v.handle).Debug("Value store write failed")
		}
	}

	if !notify && !indicate {
		return nil
	}

	p.conns.Range(func(conn stack.ConnID, _ struct{}) bool {
		for _, v := range values {
			if notify {
				if err := p.stk.Notify(conn, v.handle); err != nil {
					p.logger.WithError(err).WithFields(logrus.Fields{
						"conn":   conn,
						"handle": v.handle,
					}).Debug("Notify failed")
				}
			}
			if indicate {
				if err := p.stk.Indicate(conn, v.handle); err != nil {
					p.logger.WithError(err).WithFields(logrus.Fields{
						"conn":   conn,
						"handle": v.handle,
					}).Debug("Indicate failed")
				}
			}
		}
		return true
	})
	return nil
}

// Advertise issues (or re-issues) the advertise call with the retained
// payload and the given interval. Calling while already advertising
// restarts advertising with the same parameters.
func (p *Peripheral) Advertise(interval time.Duration) error {
	if !p.initialized.Load() {
		return fmt.Errorf("peripheral not initialized")
	}
	adv := p.adv
	adv.Interval = interval
	return p.stk.Advertise(adv)
}

// Close stops advertising and releases the radio.
func (p *Peripheral) Close() error {
	if err := p.stk.StopAdvertising(); err != nil {
		p.logger.WithError(err).Debug("Stop advertising failed")
	}
	return p.stk.Disable()
}

// ConnectionCount returns the number of currently connected centrals.
func (p *Peripheral) ConnectionCount() int {
	return p.conns.Len()
}

// Connections returns the current connection identifiers, sorted for
// stable output.
func (p *Peripheral) Connections() []stack.ConnID {
	out := make([]stack.ConnID, 0, p.conns.Len())
	p.conns.Range(func(conn stack.ConnID, _ struct{}) bool {
		out = append(out, conn)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CommandHandle returns the value handle of the command characteristic,
// valid after Initialize. Intended for test drivers that simulate central
// writes.
func (p *Peripheral) CommandHandle() stack.ValueHandle {
	return p.commandHandle
}

// IndicateFailures returns the number of indications that were not
// acknowledged.
func (p *Peripheral) IndicateFailures() uint64 {
	return p.indicateFailures.Load()
}

// Events returns the diagnostic capture ring of recent stack events.
func (p *Peripheral) Events() *eventlog.Log[stack.Event] {
	return p.events
}
