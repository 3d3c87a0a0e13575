package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimStaysInRange(t *testing.T) {
	s := NewSim(1)

	for i := 0; i < 1000; i++ {
		r, err := s.Read()
		require.NoError(t, err)

		assert.GreaterOrEqual(t, r.Temperature, -10.0)
		assert.LessOrEqual(t, r.Temperature, 45.0)
		assert.GreaterOrEqual(t, r.Pressure, 950.0)
		assert.LessOrEqual(t, r.Pressure, 1060.0)
		assert.GreaterOrEqual(t, r.Humidity, 5.0)
		assert.LessOrEqual(t, r.Humidity, 95.0)
	}
}

func TestSimDeterministicPerSeed(t *testing.T) {
	a := NewSim(42)
	b := NewSim(42)

	for i := 0; i < 10; i++ {
		ra, _ := a.Read()
		rb, _ := b.Read()
		assert.Equal(t, ra, rb)
	}
}

func TestSimDrifts(t *testing.T) {
	s := NewSim(7)
	first, _ := s.Read()

	changed := false
	for i := 0; i < 20; i++ {
		r, _ := s.Read()
		if r != first {
			changed = true
			break
		}
	}
	assert.True(t, changed, "random walk should move off its starting point")
}
