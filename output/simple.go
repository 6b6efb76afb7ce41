package output

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ansel1/marquee/engine"
	"github.com/ansel1/marquee/output/format"
	"github.com/ansel1/marquee/results"
	"github.com/rs/zerolog"
)

// SimpleOutput writes plain append-only output for -notty mode. Completed
// files are written as soon as they finish; the summary and closing message
// are written once, when the run ends.
type SimpleOutput struct {
	writer    io.Writer
	collector *results.Collector
	styles    *format.Styles
	width     int
	now       func() time.Time
	log       zerolog.Logger

	// timestamp of the latest record that carried one
	lastRecord time.Time

	err error // first write error
}

// Option configures a SimpleOutput.
type Option func(*SimpleOutput)

// WithWidth sets the column count used for the progress bar and path
// truncation. 0 means unknown.
func WithWidth(width int) Option {
	return func(s *SimpleOutput) {
		s.width = width
	}
}

// WithStyles overrides the styles derived from the writer.
func WithStyles(styles *format.Styles) Option {
	return func(s *SimpleOutput) {
		s.styles = styles
	}
}

// WithLogger sets the logger for dropped events and decode errors.
func WithLogger(log zerolog.Logger) Option {
	return func(s *SimpleOutput) {
		s.log = log
	}
}

// WithClock replaces time.Now when computing the elapsed time.
func WithClock(now func() time.Time) Option {
	return func(s *SimpleOutput) {
		s.now = now
	}
}

// NewSimpleOutput creates a simple output writer fed by collector.
func NewSimpleOutput(w io.Writer, collector *results.Collector, opts ...Option) *SimpleOutput {
	s := &SimpleOutput{
		writer:    w,
		collector: collector,
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.styles == nil {
		s.styles = format.StylesFor(w)
	}
	return s
}

// ProcessEvents consumes events until the stream completes, then writes the
// summary. It returns the first write error, if any.
func (s *SimpleOutput) ProcessEvents(events <-chan engine.Event) error {
	token := s.collector.Subscribe(s.onSnapshot)
	defer s.collector.Unsubscribe(token)

	for evt := range events {
		switch evt.Type {
		case engine.EventRawLine:
			s.println(string(evt.RawLine))

		case engine.EventLifecycle:
			if !evt.Time.IsZero() {
				s.lastRecord = evt.Time
			}
			if err := s.collector.Dispatch(evt.Lifecycle); err != nil {
				level := zerolog.WarnLevel
				if errors.Is(err, results.ErrRunFinished) {
					level = zerolog.DebugLevel
				}
				s.log.WithLevel(level).Err(err).Str("event", evt.Lifecycle.Kind()).Msg("event dropped")
			}

		case engine.EventError:
			s.log.Warn().Err(evt.Error).Msg("input error")
			s.println(fmt.Sprintf("Error: %v", evt.Error))

		case engine.EventComplete:
			return s.finish()
		}
	}
	return s.finish()
}

func (s *SimpleOutput) onSnapshot(snap results.Snapshot) {
	for _, entry := range snap.NewlyCompleted {
		s.println(s.styles.Result(entry, snap.Config))
	}
}

// finish writes the final frame exactly once.
func (s *SimpleOutput) finish() error {
	if s.collector.Phase() == results.PhaseNotStarted {
		return s.err
	}
	if s.collector.Finish() {
		s.log.Warn().Msg("run ended without completing")
	}

	snap := s.collector.Snapshot()
	frame := format.Frame{
		State:  snap.State,
		Config: snap.Config,
		Summary: format.SummaryOptions{
			RunTime:       format.Elapsed(snap.State.Results.StartTime, s.endTime(), true),
			EstimatedTime: snap.Options.EstimatedTime,
			Width:         s.width,
			Done:          true,
		},
	}
	s.println("")
	s.println(s.styles.Live(frame))
	return s.err
}

// endTime is the instant the Time row measures up to. Recorded input is
// measured up to its last record, so a file read long after the run still
// shows the run's own duration.
func (s *SimpleOutput) endTime() time.Time {
	if !s.lastRecord.IsZero() {
		return s.lastRecord
	}
	return s.now()
}

func (s *SimpleOutput) println(line string) {
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintln(s.writer, line); err != nil {
		s.err = fmt.Errorf("writing output: %w", err)
	}
}

// HasFailures returns true if the run failed or was interrupted.
func (s *SimpleOutput) HasFailures() bool {
	return s.collector.State().Results.HasFailures()
}
