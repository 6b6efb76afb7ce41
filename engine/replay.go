package engine

import (
	"bufio"
	"io"
	"time"

	"github.com/ansel1/marquee/events"
)

// timedLine is an input line with the time its record was emitted.
type timedLine struct {
	data     []byte
	at       time.Time
	isRecord bool // raw lines are released without waiting
}

// ReplayReader re-emits a recorded event stream, sleeping between records
// so the reporter sees the original pacing scaled by rate.
type ReplayReader struct {
	lines []timedLine
	rate  float64
	sleep func(time.Duration)

	next    int
	pending []byte
	last    time.Time
}

// NewReplayReader buffers all of r and prepares it for timed replay.
// A rate of 0 replays instantly, 1 at original speed, 0.5 at twice the speed.
func NewReplayReader(r io.Reader, rate float64) (*ReplayReader, error) {
	var lines []timedLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		data := append([]byte(nil), scanner.Bytes()...)

		line := timedLine{data: data}
		if rec, err := events.ParseRecord(data); err == nil && !rec.Time.IsZero() {
			line.at = rec.Time
			line.isRecord = true
		} else if len(lines) > 0 {
			line.at = lines[len(lines)-1].at
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &ReplayReader{
		lines: lines,
		rate:  rate,
		sleep: time.Sleep,
	}, nil
}

// Len returns the number of buffered lines.
func (r *ReplayReader) Len() int {
	return len(r.lines)
}

// Read implements io.Reader, handing out one line at a time.
func (r *ReplayReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		if r.next >= len(r.lines) {
			return 0, io.EOF
		}
		line := r.lines[r.next]
		r.next++

		r.wait(line)
		r.pending = append(append(make([]byte, 0, len(line.data)+1), line.data...), '\n')
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// wait sleeps for the gap between the previous record and line.
func (r *ReplayReader) wait(line timedLine) {
	if line.at.IsZero() {
		return
	}
	if line.isRecord && r.rate > 0 && !r.last.IsZero() {
		if gap := line.at.Sub(r.last); gap > 0 {
			r.sleep(time.Duration(float64(gap) * r.rate))
		}
	}
	r.last = line.at
}
