package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/srg/envble/internal/sensor"
)

const clearLineSequence = "\r\033[K"

// StatusLine displays a single in-place terminal line with the latest
// reading and connection count. It stays silent when the output is not a
// terminal so logs piped to a file remain clean.
//
// The caller must call Stop to clear the line before printing anything else.
type StatusLine struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	stopped bool

	nameColor  *color.Color
	connsColor *color.Color
}

// NewStatusLine creates a status line writing to stdout. It is disabled
// when stdout is not a terminal.
func NewStatusLine() *StatusLine {
	return newStatusLine(os.Stdout, term.IsTerminal(int(os.Stdout.Fd())))
}

func newStatusLine(out io.Writer, enabled bool) *StatusLine {
	return &StatusLine{
		out:        out,
		enabled:    enabled,
		nameColor:  color.New(color.FgCyan),
		connsColor: color.New(color.FgGreen),
	}
}

// Update redraws the status line with the latest sample.
// Safe to call from multiple goroutines.
func (s *StatusLine) Update(name string, r sensor.Reading, conns, samples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.stopped {
		return
	}

	fmt.Fprintf(s.out, "\r%s %s  %.1f°C %.0fhPa %.0f%%RH  sample %d   ",
		s.nameColor.Sprint(name),
		s.connsColor.Sprintf("[%d conn]", conns),
		r.Temperature, r.Pressure, r.Humidity, samples)
}

// Stop clears the status line. Safe to call multiple times.
func (s *StatusLine) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.stopped {
		s.stopped = true
		return
	}
	s.stopped = true
	fmt.Fprint(s.out, clearLineSequence)
}
