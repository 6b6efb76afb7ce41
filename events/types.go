package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Identity keys one test file's lifecycle within a run.
type Identity struct {
	Path    string // Absolute (or config-relative) test file path
	Project string // Project name from the owning config
}

func (id Identity) String() string {
	if id.Project == "" {
		return id.Path
	}
	return id.Project + ":" + id.Path
}

// DisplayName is a project's badge. It decodes from either a bare JSON
// string or a {"name", "color"} object; Color is empty for the string form.
type DisplayName struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// UnmarshalJSON accepts both the string and object forms.
func (d *DisplayName) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		d.Name = name
		d.Color = ""
		return nil
	}

	type plain DisplayName
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("displayName must be a string or {name, color}: %w", err)
	}
	*d = DisplayName(obj)
	return nil
}

// ProjectConfig is the subset of a project's configuration the reporter reads.
type ProjectConfig struct {
	Name        string       `json:"name"`
	RootDir     string       `json:"rootDir"`
	Cwd         string       `json:"cwd,omitempty"`
	DisplayName *DisplayName `json:"displayName,omitempty"`
}

// BaseDir is the directory paths are displayed relative to: Cwd when set,
// otherwise RootDir.
func (c ProjectConfig) BaseDir() string {
	if c.Cwd != "" {
		return c.Cwd
	}
	return c.RootDir
}

// Context is an opaque handle for one project participating in the run.
// Only the number of distinct contexts matters.
type Context struct {
	Project string
	RootDir string
}

// ContextOf returns the context handle for a project config.
func ContextOf(cfg ProjectConfig) Context {
	return Context{Project: cfg.Name, RootDir: cfg.RootDir}
}

// GlobalConfig holds the run-wide settings supplied by the test engine.
type GlobalConfig struct {
	RootDir          string   `json:"rootDir"`
	Silent           bool     `json:"silent"`
	Verbose          bool     `json:"verbose"`
	Expand           bool     `json:"expand"`
	UpdateSnapshot   string   `json:"updateSnapshot"` // "all", "new" or "none"
	RunTestsByPath   bool     `json:"runTestsByPath"`
	OnlyChanged      bool     `json:"onlyChanged"`
	TestPathPattern  string   `json:"testPathPattern"`
	TestNamePattern  string   `json:"testNamePattern"`
	FindRelatedTests bool     `json:"findRelatedTests"`
	NonFlagArgs      []string `json:"nonFlagArgs"`
}

// DidUpdateSnapshots reports whether obsolete snapshots are removed in this run.
func (g GlobalConfig) DidUpdateSnapshots() bool {
	return g.UpdateSnapshot == "all"
}

// RunOptions are the per-run hints the engine passes at start.
type RunOptions struct {
	EstimatedTime float64 `json:"estimatedTime"` // seconds, 0 when unknown
}

// SnapshotSummary is the run-wide snapshot aggregate.
type SnapshotSummary struct {
	Added               int                 `json:"added"`
	Updated             int                 `json:"updated"`
	Matched             int                 `json:"matched"`
	Unmatched           int                 `json:"unmatched"`
	Unchecked           int                 `json:"unchecked"`
	FilesAdded          int                 `json:"filesAdded"`
	FilesUpdated        int                 `json:"filesUpdated"`
	FilesUnmatched      int                 `json:"filesUnmatched"`
	FilesRemoved        int                 `json:"filesRemoved"`
	DidUpdate           bool                `json:"didUpdate"`
	Total               int                 `json:"total"`
	UncheckedKeysByFile []UncheckedKeysFile `json:"uncheckedKeysByFile,omitempty"`
}

// UncheckedKeysFile lists the obsolete snapshot keys of one test file.
type UncheckedKeysFile struct {
	FilePath string   `json:"filePath"`
	Keys     []string `json:"keys"`
}

// AggregatedResult is the authoritative run-wide totals snapshot. The engine
// computes it; the reporter only ever replaces it wholesale.
type AggregatedResult struct {
	NumFailedTestSuites  int             `json:"numFailedTestSuites"`
	NumPassedTestSuites  int             `json:"numPassedTestSuites"`
	NumPendingTestSuites int             `json:"numPendingTestSuites"`
	NumTotalTestSuites   int             `json:"numTotalTestSuites"`
	NumFailedTests       int             `json:"numFailedTests"`
	NumPassedTests       int             `json:"numPassedTests"`
	NumPendingTests      int             `json:"numPendingTests"`
	NumTodoTests         int             `json:"numTodoTests"`
	NumTotalTests        int             `json:"numTotalTests"`
	StartTime            int64           `json:"startTime"` // unix milliseconds
	WasInterrupted       bool            `json:"wasInterrupted"`
	Snapshot             SnapshotSummary `json:"snapshot"`
}

// Started returns StartTime as a time.Time, or the zero time when unset.
func (a AggregatedResult) Started() time.Time {
	if a.StartTime == 0 {
		return time.Time{}
	}
	return time.UnixMilli(a.StartTime)
}

// HasFailures reports whether the aggregate should fail the process.
func (a AggregatedResult) HasFailures() bool {
	return a.NumFailedTests > 0 || a.NumFailedTestSuites > 0 || a.WasInterrupted
}

// AssertionStatus is the outcome of a single assertion (test case).
type AssertionStatus string

const (
	StatusPassed   AssertionStatus = "passed"
	StatusFailed   AssertionStatus = "failed"
	StatusPending  AssertionStatus = "pending"
	StatusTodo     AssertionStatus = "todo"
	StatusDisabled AssertionStatus = "disabled"
)

// AssertionResult is one test case inside a test file.
type AssertionResult struct {
	AncestorTitles []string        `json:"ancestorTitles"`
	Title          string          `json:"title"`
	FullName       string          `json:"fullName,omitempty"`
	Status         AssertionStatus `json:"status"`
	Duration       *float64        `json:"duration,omitempty"` // milliseconds
}

// ConsoleEntry is one buffered console call captured while a file ran.
type ConsoleEntry struct {
	Type    string `json:"type"` // log, info, warn, error, debug...
	Message string `json:"message"`
	Origin  string `json:"origin"` // call site, usually "path:line:col"
}

// ExecError is a failure of the test file itself rather than an assertion.
type ExecError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// SnapshotStatus is the per-file snapshot outcome.
type SnapshotStatus struct {
	Added         int      `json:"added"`
	Updated       int      `json:"updated"`
	Matched       int      `json:"matched"`
	Unmatched     int      `json:"unmatched"`
	Unchecked     int      `json:"unchecked"`
	UncheckedKeys []string `json:"uncheckedKeys,omitempty"`
	FileDeleted   bool     `json:"fileDeleted"`
}

// TestResult is the completed result of one test file.
type TestResult struct {
	TestFilePath    string            `json:"testFilePath"`
	Skipped         bool              `json:"skipped"`
	NumFailingTests int               `json:"numFailingTests"`
	NumPassingTests int               `json:"numPassingTests"`
	NumPendingTests int               `json:"numPendingTests"`
	NumTodoTests    int               `json:"numTodoTests"`
	TestExecError   *ExecError        `json:"testExecError,omitempty"`
	Console         []ConsoleEntry    `json:"console,omitempty"`
	FailureMessage  string            `json:"failureMessage,omitempty"`
	Snapshot        SnapshotStatus    `json:"snapshot"`
	TestResults     []AssertionResult `json:"testResults,omitempty"`
}

// Failed reports whether the file is rendered with a FAIL badge.
func (r TestResult) Failed() bool {
	if r.Skipped {
		return false
	}
	return r.NumFailingTests > 0 || r.TestExecError != nil
}
