package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotRecord is returned for lines that are not JSON event records.
	ErrNotRecord = errors.New("not an event record")
	// ErrUnknownRecord is returned for records with an unrecognized type.
	ErrUnknownRecord = errors.New("unknown event record type")
)

// TestRef is the wire form of a test file reference.
type TestRef struct {
	Path    string     `json:"path"`
	Context ContextRef `json:"context"`
}

// ContextRef is the wire form of a project context.
type ContextRef struct {
	Config ProjectConfig `json:"config"`
}

// Identity returns the join key of the referenced test file.
func (t TestRef) Identity() Identity {
	return Identity{Path: t.Path, Project: t.Context.Config.Name}
}

// Record is a single line of the reporter's input stream.
type Record struct {
	Type              string            `json:"type"`
	Time              time.Time         `json:"time,omitempty"`
	AggregatedResults *AggregatedResult `json:"aggregatedResults,omitempty"`
	Options           *RunOptions       `json:"options,omitempty"`
	GlobalConfig      *GlobalConfig     `json:"globalConfig,omitempty"`
	Test              *TestRef          `json:"test,omitempty"`
	TestResult        *TestResult       `json:"testResult,omitempty"`
	Contexts          []ContextRef      `json:"contexts,omitempty"`
}

// ParseRecord decodes one line into a Record without interpreting it.
func ParseRecord(line []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(line, &rec); err != nil {
		return rec, fmt.Errorf("%w: %v", ErrNotRecord, err)
	}
	if rec.Type == "" {
		return rec, fmt.Errorf("%w: missing type", ErrNotRecord)
	}
	return rec, nil
}

// ParseEvent decodes one line of input into a lifecycle event.
func ParseEvent(line []byte) (Event, error) {
	rec, err := ParseRecord(line)
	if err != nil {
		return nil, err
	}
	return rec.Event()
}

// Event converts the record into its lifecycle event.
func (r Record) Event() (Event, error) {
	switch r.Type {
	case KindRunStart:
		evt := RunStarted{}
		if r.AggregatedResults != nil {
			evt.Results = *r.AggregatedResults
		}
		if r.Options != nil {
			evt.Options = *r.Options
		}
		if r.GlobalConfig != nil {
			evt.Config = *r.GlobalConfig
		}
		return evt, nil

	case KindTestStart:
		if r.Test == nil {
			return nil, fmt.Errorf("%s record without test", r.Type)
		}
		return TestStarted{Test: r.Test.Identity(), Config: r.Test.Context.Config}, nil

	case KindTestResult:
		if r.Test == nil || r.TestResult == nil {
			return nil, fmt.Errorf("%s record without test or testResult", r.Type)
		}
		evt := TestFinished{
			Test:    r.Test.Identity(),
			Config:  r.Test.Context.Config,
			Result:  *r.TestResult,
			Results: r.AggregatedResults,
		}
		if evt.Result.TestFilePath == "" {
			evt.Result.TestFilePath = r.Test.Path
		}
		return evt, nil

	case KindRunComplete:
		cfgs := make([]ProjectConfig, 0, len(r.Contexts))
		for _, c := range r.Contexts {
			cfgs = append(cfgs, c.Config)
		}
		return RunCompleted{
			Contexts: NewContexts(cfgs...),
			Results:  r.AggregatedResults,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownRecord, r.Type)
}
