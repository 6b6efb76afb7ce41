package results

import (
	"errors"
	"maps"
	"sync"

	"github.com/ansel1/marquee/events"
	"github.com/rs/zerolog"
)

var (
	// ErrRunFinished is returned by Dispatch once the run has completed.
	ErrRunFinished = errors.New("run already finished")
	// ErrRunStarted is returned when a second RunStarted arrives mid-run.
	ErrRunStarted = errors.New("run already started")
)

// Phase is the lifecycle position of the collector.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// Snapshot is the read-only view handed to subscribers after each event.
type Snapshot struct {
	State   RunState
	Phase   Phase
	Event   events.Event // the event that produced this snapshot
	Options events.RunOptions
	Config  events.GlobalConfig

	// NewlyCompleted holds the entries appended by Event, in order.
	NewlyCompleted []CompletedEntry
}

// Handler receives snapshots. Handlers run synchronously on the dispatching
// goroutine and must not call back into Dispatch.
type Handler func(Snapshot)

// Token identifies a subscription.
type Token uint64

type subscription struct {
	token   Token
	handler Handler
}

// Collector owns the RunState of one run. It applies events one at a time,
// in arrival order, and notifies subscribers after every transition.
//
// Lifecycle: NotStarted -> Running on RunStarted (or implicitly on the first
// other event), Running -> Finished on RunCompleted. Events after that are
// rejected with ErrRunFinished.
type Collector struct {
	mu       sync.Mutex
	state    RunState
	phase    Phase
	options  events.RunOptions
	config   events.GlobalConfig
	override func(events.GlobalConfig) events.GlobalConfig
	seen     map[events.Context]struct{}

	subscribers []subscription
	nextToken   Token

	log zerolog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(log zerolog.Logger) CollectorOption {
	return func(c *Collector) {
		c.log = log
	}
}

// WithConfigOverride adjusts the engine-supplied global config when a run
// starts, e.g. to apply command line flags.
func WithConfigOverride(fn func(events.GlobalConfig) events.GlobalConfig) CollectorOption {
	return func(c *Collector) {
		c.override = fn
	}
}

// NewCollector creates a collector waiting for its run to start.
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		state: NewRunState(events.AggregatedResult{}),
		seen:  map[events.Context]struct{}{},
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.override != nil {
		c.config = c.override(c.config)
	}
	return c
}

// Subscribe registers h and returns a token for Unsubscribe.
func (c *Collector) Subscribe(h Handler) Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextToken++
	c.subscribers = append(c.subscribers, subscription{token: c.nextToken, handler: h})
	return c.nextToken
}

// Unsubscribe removes a subscription. Unknown tokens are ignored.
func (c *Collector) Unsubscribe(t Token) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, sub := range c.subscribers {
		if sub.token == t {
			c.subscribers = append(c.subscribers[:i:i], c.subscribers[i+1:]...)
			return
		}
	}
}

// Dispatch applies evt to the run state and then notifies every subscriber.
func (c *Collector) Dispatch(evt events.Event) error {
	c.mu.Lock()

	switch {
	case c.phase == PhaseFinished:
		c.mu.Unlock()
		c.log.Debug().Str("event", evt.Kind()).Msg("ignoring event after run finished")
		return ErrRunFinished

	case c.phase == PhaseRunning && isRunStart(evt):
		c.mu.Unlock()
		c.log.Warn().Msg("ignoring duplicate run start")
		return ErrRunStarted

	case c.phase == PhaseNotStarted && !isRunStart(evt):
		c.log.Debug().Str("event", evt.Kind()).Msg("starting run implicitly")
		c.start(events.RunStarted{})
	}

	prevCompleted := len(c.state.Completed)

	switch evt := evt.(type) {
	case events.RunStarted:
		c.start(evt)
	case events.TestStarted:
		if c.state.IsPending(evt.Test) {
			c.log.Debug().Stringer("test", evt.Test).Msg("test started twice")
		}
		c.seen[events.ContextOf(evt.Config)] = struct{}{}
		c.state = Reduce(c.state, evt)
	case events.TestFinished:
		if !c.state.IsPending(evt.Test) {
			c.log.Debug().Stringer("test", evt.Test).Msg("result for test that was not started")
		}
		c.state = Reduce(c.state, evt)
	case events.RunCompleted:
		c.state = Reduce(c.state, evt)
		c.phase = PhaseFinished
	}

	c.log.Debug().
		Str("event", evt.Kind()).
		Int("pending", len(c.state.Pending)).
		Int("completed", len(c.state.Completed)).
		Stringer("phase", c.phase).
		Msg("dispatched")

	snap := c.snapshotLocked(evt, prevCompleted)
	subs := append([]subscription(nil), c.subscribers...)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.handler(snap)
	}
	return nil
}

// Finish completes a run that ended without a RunCompleted event, marking
// it interrupted. It returns false when the run had already finished.
func (c *Collector) Finish() bool {
	c.mu.Lock()
	if c.phase == PhaseFinished {
		c.mu.Unlock()
		return false
	}
	final := c.state.Results
	final.WasInterrupted = true
	contexts := maps.Clone(c.seen)
	c.mu.Unlock()

	c.log.Info().Msg("input ended before run completed")
	return c.Dispatch(events.RunCompleted{Contexts: contexts, Results: &final}) == nil
}

// State returns the current run state. The value is never mutated later.
func (c *Collector) State() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Phase returns the current lifecycle phase.
func (c *Collector) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Snapshot returns the current state as a subscriber would see it.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(nil, len(c.state.Completed))
}

func (c *Collector) start(evt events.RunStarted) {
	c.state = Reduce(c.state, evt)
	c.options = evt.Options
	c.config = evt.Config
	if c.override != nil {
		c.config = c.override(c.config)
	}
	c.phase = PhaseRunning
}

func (c *Collector) snapshotLocked(evt events.Event, prevCompleted int) Snapshot {
	return Snapshot{
		State:          c.state,
		Phase:          c.phase,
		Event:          evt,
		Options:        c.options,
		Config:         c.config,
		NewlyCompleted: c.state.Completed[prevCompleted:len(c.state.Completed):len(c.state.Completed)],
	}
}

func isRunStart(evt events.Event) bool {
	_, ok := evt.(events.RunStarted)
	return ok
}
