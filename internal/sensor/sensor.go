// Package sensor defines the environmental sensor source polled by the
// application loop. The real device is a BME280-class sensor behind an I2C
// driver; that driver lives outside this repo, behind the Source interface.
// Sim provides a host-side source for development and tests.
package sensor

import (
	"math/rand"
	"sync"
)

// Reading is one calibrated sample: temperature in °C, pressure in hPa,
// relative humidity in percent.
type Reading struct {
	Temperature float64
	Pressure    float64
	Humidity    float64
}

// Source produces environmental readings. Read is called from the
// application loop, typically once per sample period.
type Source interface {
	Read() (Reading, error)
}

// Sim is a bounded random-walk source. Values start at typical indoor
// conditions and drift a little on every read, staying inside plausible
// physical ranges.
type Sim struct {
	mu  sync.Mutex
	rng *rand.Rand
	cur Reading
}

// NewSim creates a simulated source. The seed makes runs reproducible.
func NewSim(seed int64) *Sim {
	return &Sim{
		rng: rand.New(rand.NewSource(seed)),
		cur: Reading{
			Temperature: 21.0,
			Pressure:    1013.0,
			Humidity:    45.0,
		},
	}
}

// Read returns the next sample of the walk. It never fails.
func (s *Sim) Read() (Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cur.Temperature = clamp(s.cur.Temperature+s.step(0.2), -10, 45)
	s.cur.Pressure = clamp(s.cur.Pressure+s.step(0.5), 950, 1060)
	s.cur.Humidity = clamp(s.cur.Humidity+s.step(0.8), 5, 95)
	return s.cur, nil
}

func (s *Sim) step(scale float64) float64 {
	return (s.rng.Float64()*2 - 1) * scale
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
