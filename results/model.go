package results

import (
	"slices"

	"github.com/ansel1/marquee/events"
)

// PendingEntry is a test file that has started and not yet reported a result.
type PendingEntry struct {
	Test   events.Identity
	Config events.ProjectConfig
}

// CompletedEntry is a finished, non-skipped test file. Entries are never
// modified after they are appended.
type CompletedEntry struct {
	Result events.TestResult
	Config events.ProjectConfig
}

// RunState is the reporter's view of a run.
//
// Invariants:
//   - Done only ever goes from false to true.
//   - Completed is append-only; earlier entries never move.
//   - An identity leaves Pending in the same transition that appends (or
//     suppresses, when skipped) its CompletedEntry.
type RunState struct {
	Results   events.AggregatedResult
	Completed []CompletedEntry
	Pending   []PendingEntry // start order
	Done      bool
	Contexts  map[events.Context]struct{}
}

// NewRunState returns the state of a run that has just started.
func NewRunState(starting events.AggregatedResult) RunState {
	return RunState{
		Results:  starting,
		Contexts: map[events.Context]struct{}{},
	}
}

// IsPending reports whether id has started and not yet finished.
func (s RunState) IsPending(id events.Identity) bool {
	return slices.ContainsFunc(s.Pending, func(p PendingEntry) bool { return p.Test == id })
}

// Reduce applies one event to the state and returns the new state. It never
// mutates prev, so snapshots handed out earlier stay valid.
//
// TestFinished for an identity that is not pending and duplicate TestStarted
// events are tolerated: the former only replaces the aggregate (and appends
// the result), the latter leaves both entries pending until results remove
// them.
func Reduce(prev RunState, evt events.Event) RunState {
	switch evt := evt.(type) {
	case events.RunStarted:
		return NewRunState(evt.Results)

	case events.TestStarted:
		next := prev
		next.Pending = append(slices.Clip(prev.Pending), PendingEntry{Test: evt.Test, Config: evt.Config})
		return next

	case events.TestFinished:
		next := prev
		next.Pending = slices.DeleteFunc(slices.Clone(prev.Pending), func(p PendingEntry) bool {
			return p.Test == evt.Test
		})
		if evt.Results != nil {
			next.Results = *evt.Results
		}
		if !evt.Result.Skipped {
			next.Completed = append(slices.Clip(prev.Completed), CompletedEntry{Result: evt.Result, Config: evt.Config})
		}
		return next

	case events.RunCompleted:
		next := prev
		next.Done = true
		next.Contexts = evt.Contexts
		if next.Contexts == nil {
			next.Contexts = map[events.Context]struct{}{}
		}
		if evt.Results != nil {
			next.Results = *evt.Results
		}
		return next
	}

	// unreachable while events.Event stays sealed
	return prev
}
