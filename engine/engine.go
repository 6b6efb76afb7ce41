package engine

import (
	"bufio"
	"errors"
	"io"
	"time"

	"github.com/ansel1/marquee/events"
)

// EventType identifies the type of event emitted by the engine
type EventType string

const (
	EventRawLine   EventType = "raw"       // Non-record line from input
	EventLifecycle EventType = "lifecycle" // Decoded lifecycle event
	EventError     EventType = "error"     // Error occurred during processing
	EventComplete  EventType = "complete"  // Input stream finished
)

// maxLineSize bounds a single input line. Test results with long failure
// messages easily exceed bufio's 64KiB default.
const maxLineSize = 16 * 1024 * 1024

// Event represents a single event emitted by the engine
type Event struct {
	Type      EventType
	RawLine   []byte       // Populated for EventRawLine
	Lifecycle events.Event // Populated for EventLifecycle
	Time      time.Time    // Record timestamp for EventLifecycle, zero when absent
	Error     error        // Populated for EventError
}

// Engine reads the reporter's input and broadcasts events.
// It keeps no run state; that belongs to results.Collector.
type Engine struct {
	// Output writers for pass-through file writing
	rawWriter  io.Writer
	jsonWriter io.Writer
}

// Option configures the engine
type Option func(*Engine)

// WithRawOutput configures engine to write all raw lines to a file
func WithRawOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.rawWriter = w
	}
}

// WithJSONOutput configures engine to write decoded event records to a file
func WithJSONOutput(w io.Writer) Option {
	return func(e *Engine) {
		e.jsonWriter = w
	}
}

// NewEngine creates a new event processing engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stream reads from input, decodes lines, and emits events via channel.
// The last event is always EventComplete, after which the channel is closed.
func (e *Engine) Stream(input io.Reader) <-chan Event {
	out := make(chan Event, 100)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := scanner.Bytes()

			if e.rawWriter != nil {
				e.rawWriter.Write(line)
				e.rawWriter.Write([]byte("\n"))
			}

			rec, err := events.ParseRecord(line)
			var evt events.Event
			if err == nil {
				evt, err = rec.Event()
			}
			if err != nil {
				if errors.Is(err, events.ErrNotRecord) {
					// scanner reuses the buffer
					lineCopy := make([]byte, len(line))
					copy(lineCopy, line)
					out <- Event{
						Type:    EventRawLine,
						RawLine: lineCopy,
					}
					continue
				}
				out <- Event{
					Type:  EventError,
					Error: err,
				}
				continue
			}

			if e.jsonWriter != nil {
				e.jsonWriter.Write(line)
				e.jsonWriter.Write([]byte("\n"))
			}

			out <- Event{
				Type:      EventLifecycle,
				Lifecycle: evt,
				Time:      rec.Time,
			}
		}

		if err := scanner.Err(); err != nil {
			out <- Event{
				Type:  EventError,
				Error: err,
			}
		}

		out <- Event{
			Type: EventComplete,
		}
	}()

	return out
}
