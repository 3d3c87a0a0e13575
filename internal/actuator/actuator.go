// Package actuator drives the physical command-channel actuator. The only
// actuator today is an LED blinked with a fixed timing pattern; Blinker is
// the seam that lets the peripheral core stay independent of the GPIO
// mechanism and lets tests count invocations.
package actuator

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Blinker executes one blink cycle. Blink blocks until the cycle
// completes; callers must not invoke it from an interrupt context.
type Blinker interface {
	Blink() error
}

// DefaultBlinkDelay is the on and off duration of one blink cycle.
const DefaultBlinkDelay = 500 * time.Millisecond

// LED blinks a Linux LED class device by writing its brightness attribute
// (e.g. /sys/class/leds/led0/brightness).
type LED struct {
	path   string
	delay  time.Duration
	logger *logrus.Logger

	// sleep is replaceable in tests to avoid real delays.
	sleep func(time.Duration)
}

// NewLED creates an LED blinker for the given brightness attribute path.
func NewLED(path string, logger *logrus.Logger) *LED {
	if logger == nil {
		logger = logrus.New()
	}
	return &LED{
		path:   path,
		delay:  DefaultBlinkDelay,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Blink turns the LED on, waits, turns it off, and waits again.
func (l *LED) Blink() error {
	if err := l.write("1"); err != nil {
		return fmt.Errorf("led on: %w", err)
	}
	l.sleep(l.delay)
	if err := l.write("0"); err != nil {
		return fmt.Errorf("led off: %w", err)
	}
	l.sleep(l.delay)
	return nil
}

func (l *LED) write(value string) error {
	return os.WriteFile(l.path, []byte(value), 0o644)
}

// Recorder counts blink invocations. It is used by the simulated serve
// mode and by tests; each blink is logged instead of toggling hardware.
type Recorder struct {
	mu     sync.Mutex
	count  int
	err    error // returned from every Blink when set
	logger *logrus.Logger
}

// NewRecorder creates a counting blinker. logger may be nil.
func NewRecorder(logger *logrus.Logger) *Recorder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Recorder{logger: logger}
}

// Blink increments the counter.
func (r *Recorder) Blink() error {
	r.mu.Lock()
	r.count++
	count := r.count
	err := r.err
	r.mu.Unlock()

	r.logger.WithField("count", count).Debug("blink")
	return err
}

// Count returns the number of Blink calls so far.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears the counter.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count = 0
}

// FailWith makes every subsequent Blink return err.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
