package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/envble/internal/sensor"
)

func TestStatusLine_Update(t *testing.T) {
	var out bytes.Buffer
	s := newStatusLine(&out, true)

	s.Update("envble", sensor.Reading{Temperature: 21.5, Pressure: 1013, Humidity: 45}, 2, 7)

	line := out.String()
	assert.True(t, strings.HasPrefix(line, "\r"))
	assert.Contains(t, line, "envble")
	assert.Contains(t, line, "[2 conn]")
	assert.Contains(t, line, "21.5")
	assert.Contains(t, line, "sample 7")
}

func TestStatusLine_Disabled(t *testing.T) {
	var out bytes.Buffer
	s := newStatusLine(&out, false)

	s.Update("envble", sensor.Reading{}, 0, 1)
	s.Stop()

	assert.Empty(t, out.String())
}

func TestStatusLine_StopClearsLine(t *testing.T) {
	var out bytes.Buffer
	s := newStatusLine(&out, true)

	s.Update("envble", sensor.Reading{}, 0, 1)
	s.Stop()
	s.Stop() // second call is a no-op

	assert.Equal(t, 1, strings.Count(out.String(), clearLineSequence))

	// Updates after Stop are dropped.
	before := out.Len()
	s.Update("envble", sensor.Reading{}, 0, 2)
	assert.Equal(t, before, out.Len())
}
