package format

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

// ansiStyles renders real escape sequences so tests can tell styled text
// from plain text.
func ansiStyles() *Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return NewStyles(r)
}

func TestElapsed(t *testing.T) {
	now := time.UnixMilli(10_500)

	tests := []struct {
		name     string
		start    int64
		round    bool
		expected float64
	}{
		{name: "fractional", start: 1_000, expected: 9.5},
		{name: "rounded down", start: 1_000, round: true, expected: 9},
		{name: "unset start", start: 0, expected: 0},
		{name: "start in the future", start: 20_000, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Elapsed(tt.start, now, tt.round), 1e-9)
		})
	}
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, "3s", Seconds(3))
	assert.Equal(t, "2.5s", Seconds(2.5))
	assert.Equal(t, "0s", Seconds(0))
}

func TestProgressCells(t *testing.T) {
	tests := []struct {
		name     string
		runTime  float64
		estimate float64
		width    int
		done     bool
		filled   int
		empty    int
		ok       bool
	}{
		{name: "typical", runTime: 3, estimate: 10, width: 40, filled: 12, empty: 28, ok: true},
		{name: "capped at forty", runTime: 5, estimate: 10, width: 200, filled: 20, empty: 20, ok: true},
		{name: "narrow terminal", runTime: 5, estimate: 10, width: 10, filled: 5, empty: 5, ok: true},
		{name: "just started", runTime: 0, estimate: 10, width: 40, filled: 0, empty: 40, ok: true},
		{name: "done", runTime: 3, estimate: 10, width: 40, done: true},
		{name: "short estimate", runTime: 1, estimate: 2, width: 40},
		{name: "estimate exceeded", runTime: 10, estimate: 10, width: 40},
		{name: "unknown width", runTime: 3, estimate: 10, width: 0},
		{name: "too narrow", runTime: 3, estimate: 10, width: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filled, empty, ok := ProgressCells(tt.runTime, tt.estimate, tt.width, tt.done)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.filled, filled)
			assert.Equal(t, tt.empty, empty)
		})
	}
}

func TestProgressCells_AlwaysFillsBarWidth(t *testing.T) {
	for width := 2; width <= 60; width++ {
		for runTime := 0.0; runTime < 30; runTime += 0.7 {
			filled, empty, ok := ProgressCells(runTime, 30, width, false)
			if !ok {
				continue
			}
			assert.Equal(t, min(ProgressBarWidth, width), filled+empty, "width=%d runTime=%v", width, runTime)
		}
	}
}

func TestStyles_ProgressBar(t *testing.T) {
	s := PlainStyles()

	bar := s.ProgressBar(3, 10, 40, false)
	assert.Equal(t, strings.Repeat("█", 40), bar)
	assert.Empty(t, s.ProgressBar(3, 10, 40, true))
}

func TestStyles_Time(t *testing.T) {
	s := PlainStyles()

	assert.Equal(t, "3s, estimated 10s", s.Time(3, 10, false))
	assert.Equal(t, "3s", s.Time(3, 10, true), "no estimate once done")
	assert.Equal(t, "11s", s.Time(11, 10, false))
	assert.Equal(t, "5s", s.Time(5, 0, false))
}

func TestStyles_Time_HighlightsOverrun(t *testing.T) {
	s := ansiStyles()

	assert.Contains(t, s.Time(11, 10, false), "\x1b[")
	assert.NotContains(t, s.Time(10, 10, false), "\x1b[", "less than a second over stays plain")
	assert.NotContains(t, s.Time(30, 0, false), "\x1b[", "no estimate, no highlight")
}
