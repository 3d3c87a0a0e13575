// Package eventlog provides a bounded, overwrite-oldest capture ring for
// asynchronous stack events. Producers (the interrupt handler) never block:
// when the ring is full the oldest entry is overwritten and counted. A
// consumer drains the ring at its own pace, typically for debug logging.
package eventlog

import (
	"sync/atomic"

	"github.com/hedzr/go-ringbuf/v2/mpmc"
)

// Metrics provides lock-free counters for a Log. All fields use atomic
// operations for thread-safe access.
type Metrics struct {
	recorded    int64
	overwritten int64
	errors      int64
}

// Recorded returns the total number of entries recorded.
func (m *Metrics) Recorded() int64 { return atomic.LoadInt64(&m.recorded) }

// Overwritten returns the number of entries lost to ring overflow.
func (m *Metrics) Overwritten() int64 { return atomic.LoadInt64(&m.overwritten) }

// Errors returns the number of ring operation failures.
func (m *Metrics) Errors() int64 { return atomic.LoadInt64(&m.errors) }

// Log is a bounded MPMC capture ring.
type Log[T any] struct {
	buffer  mpmc.RichOverlappedRingBuffer[T]
	metrics Metrics
}

// New creates a Log with the given capacity. Panics if capacity is zero.
func New[T any](capacity uint32) *Log[T] {
	if capacity == 0 {
		panic("eventlog: capacity must be > 0")
	}
	return &Log[T]{
		buffer: mpmc.NewOverlappedRingBuffer[T](capacity),
	}
}

// Record appends an entry, overwriting the oldest one if the ring is full.
// It never blocks and is safe to call from the stack's callback context.
func (l *Log[T]) Record(v T) {
	overwrites, err := l.buffer.EnqueueM(v)
	if err != nil {
		atomic.AddInt64(&l.metrics.errors, 1)
		return
	}
	atomic.AddInt64(&l.metrics.overwritten, int64(overwrites))
	atomic.AddInt64(&l.metrics.recorded, 1)
}

// Drain removes and returns all currently buffered entries, oldest first.
func (l *Log[T]) Drain() []T {
	var out []T
	for !l.buffer.IsEmpty() {
		v, err := l.buffer.Dequeue()
		if err != nil {
			atomic.AddInt64(&l.metrics.errors, 1)
			break
		}
		out = append(out, v)
	}
	return out
}

// Metrics returns the counter set for this log.
func (l *Log[T]) Metrics() *Metrics { return &l.metrics }
