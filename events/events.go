// Package events defines the lifecycle events a test engine reports while a
// run progresses, and decodes them from newline-delimited JSON.
package events

// Event is one lifecycle notification from the test engine.
//
// The set of implementations is closed: RunStarted, TestStarted,
// TestFinished and RunCompleted. Consumers switch on the concrete type and
// must handle every variant.
type Event interface {
	isEvent()
	// Kind returns the wire name of the event ("runStart", "testStart"...).
	Kind() string
}

// RunStarted opens a run with the engine's starting aggregate.
type RunStarted struct {
	Results AggregatedResult
	Options RunOptions
	Config  GlobalConfig
}

// TestStarted reports that a test file began executing.
type TestStarted struct {
	Test   Identity
	Config ProjectConfig
}

// TestFinished reports the result of a test file together with the
// engine's latest run-wide aggregate. Results is nil when the record
// carried no aggregate.
type TestFinished struct {
	Results *AggregatedResult
	Test    Identity
	Config  ProjectConfig
	Result  TestResult
}

// RunCompleted closes the run. Results is nil when the engine sent no
// final aggregate.
type RunCompleted struct {
	Contexts map[Context]struct{}
	Results  *AggregatedResult
}

func (RunStarted) isEvent()   {}
func (TestStarted) isEvent()  {}
func (TestFinished) isEvent() {}
func (RunCompleted) isEvent() {}

func (RunStarted) Kind() string   { return KindRunStart }
func (TestStarted) Kind() string  { return KindTestStart }
func (TestFinished) Kind() string { return KindTestResult }
func (RunCompleted) Kind() string { return KindRunComplete }

// Wire names of the record types.
const (
	KindRunStart    = "runStart"
	KindTestStart   = "testStart"
	KindTestResult  = "testResult"
	KindRunComplete = "runComplete"
)

// NewContexts builds a context set from project configs.
func NewContexts(cfgs ...ProjectConfig) map[Context]struct{} {
	set := make(map[Context]struct{}, len(cfgs))
	for _, cfg := range cfgs {
		set[ContextOf(cfg)] = struct{}{}
	}
	return set
}
