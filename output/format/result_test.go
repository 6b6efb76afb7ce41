package format

import (
	"strings"
	"testing"

	"github.com/ansel1/marquee/events"
	"github.com/acarl005/stripansi"
	"github.com/ansel1/marquee/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var webProject = events.ProjectConfig{Name: "web", RootDir: "/repo"}

func ms(v float64) *float64 { return &v }

func TestStyles_StatusBadge(t *testing.T) {
	s := PlainStyles()

	assert.Equal(t, " PASS  ", s.StatusBadge(events.TestResult{}))
	assert.Equal(t, " FAIL  ", s.StatusBadge(events.TestResult{NumFailingTests: 1}))
	assert.Equal(t, " FAIL  ", s.StatusBadge(events.TestResult{TestExecError: &events.ExecError{Message: "boom"}}))
	assert.Empty(t, s.StatusBadge(events.TestResult{Skipped: true, NumFailingTests: 1}))
	assert.Equal(t, " RUNS  ", s.RunsBadge())
}

func TestStyles_Badges_AreInverse(t *testing.T) {
	s := ansiStyles()

	// reverse video is SGR 7
	assert.Contains(t, s.StatusBadge(events.TestResult{}), "7")
	assert.Contains(t, s.StatusBadge(events.TestResult{}), "\x1b[")
	assert.True(t, strings.HasSuffix(s.RunsBadge(), " "), "badge is followed by a plain space")
}

func TestStyles_DisplayName(t *testing.T) {
	s := PlainStyles()

	assert.Empty(t, s.DisplayName(webProject))
	assert.Equal(t, " client  ", s.DisplayName(events.ProjectConfig{DisplayName: &events.DisplayName{Name: "client"}}))
	assert.Equal(t, " api  ", s.DisplayName(events.ProjectConfig{DisplayName: &events.DisplayName{Name: "api", Color: "blue"}}))
	assert.Empty(t, s.DisplayName(events.ProjectConfig{DisplayName: &events.DisplayName{}}))
}

func TestStyles_ColorTag(t *testing.T) {
	s := PlainStyles()

	assert.Equal(t, colorRed, s.colorTag("red"))
	assert.Equal(t, colorMagenta, s.colorTag("Magenta"))
	assert.Equal(t, "#ff00ff", string(s.colorTag("#ff00ff")))
	assert.Equal(t, colorWhite, s.colorTag("chartreuse"))
}

func TestStyles_Running(t *testing.T) {
	s := PlainStyles()
	entry := results.PendingEntry{
		Test:   events.Identity{Path: "/repo/src/components/button.test.js", Project: "web"},
		Config: webProject,
	}

	assert.Equal(t, " RUNS  src/components/button.test.js", s.Running(entry, Unbounded))
	assert.Equal(t, " RUNS  …/button.test.js", s.Running(entry, len("button.test.js")+4+RunningPadding))
}

func TestStyles_Console(t *testing.T) {
	s := PlainStyles()

	assert.Nil(t, s.Console(nil, "/repo", false))

	lines := s.Console([]events.ConsoleEntry{
		{Type: "log", Message: "hello\nworld", Origin: "/repo/src/a.js:3:9"},
		{Type: "warn", Message: "careful", Origin: "/repo/src/b.js:1:1"},
	}, "/repo", false)

	assert.Equal(t, []string{
		"  ● Console:",
		"",
		"     console.log src/a.js:3:9",
		"      hello",
		"      world",
		"",
		"     console.warn src/b.js:1:1",
		"      careful",
		"",
	}, lines)
}

func TestStyles_Console_VerboseIndent(t *testing.T) {
	lines := PlainStyles().Console([]events.ConsoleEntry{
		{Type: "error", Message: "bad", Origin: "a.js:1"},
	}, "", true)

	require.Len(t, lines, 5)
	assert.Equal(t, "   console.error a.js:1", lines[2])
	assert.Equal(t, "    bad", lines[3])
}

func TestStyles_Console_ColoursByType(t *testing.T) {
	s := ansiStyles()

	warn := s.Console([]events.ConsoleEntry{{Type: "warn", Message: "w"}}, "", false)
	log := s.Console([]events.ConsoleEntry{{Type: "log", Message: "l"}}, "", false)

	assert.Contains(t, warn[3], "\x1b[")
	assert.NotContains(t, log[3], "\x1b[")
}

func TestFailureMessage(t *testing.T) {
	msg := "  ● suite › test\n\n    expect(a).toBe(b)"

	got := FailureMessage(msg)

	assert.NotContains(t, got, " ")
	assert.Equal(t, strings.Count(msg, " "), strings.Count(got, "\u00a0"))
	assert.Equal(t, strings.Count(msg, "\n"), strings.Count(got, "\n"), "line structure is untouched")
}

func TestFailureMessage_ResetsColour(t *testing.T) {
	assert.Equal(t, "\x1b[31mred\x1b[0m", FailureMessage("\x1b[31mred"))
	assert.Equal(t, "plain", FailureMessage("plain"))
}

func TestStyles_VerboseTests(t *testing.T) {
	s := PlainStyles()
	assertions := []events.AssertionResult{
		{AncestorTitles: []string{"math"}, Title: "adds", Status: events.StatusPassed, Duration: ms(12.4)},
		{AncestorTitles: []string{"math"}, Title: "later", Status: events.StatusTodo},
		{AncestorTitles: []string{"math"}, Title: "skips", Status: events.StatusPending},
		{AncestorTitles: []string{"math"}, Title: "breaks", Status: events.StatusFailed, Duration: ms(0)},
		{AncestorTitles: []string{"math", "division"}, Title: "by zero", Status: events.StatusPassed},
		{Title: "top level", Status: events.StatusPassed, Duration: ms(3)},
	}

	assert.Equal(t, []string{
		"  ✓ top level (3ms)",
		"  math",
		"    ✓ adds (12ms)",
		"    ✕ breaks",
		"    ○ skipped skips",
		"    ✎ todo later",
		"    division",
		"      ✓ by zero",
	}, s.VerboseTests(assertions, false))
}

func TestStyles_VerboseTests_Expand(t *testing.T) {
	s := PlainStyles()
	assertions := []events.AssertionResult{
		{Title: "b", Status: events.StatusTodo},
		{Title: "a", Status: events.StatusPending},
		{Title: "c", Status: events.StatusPassed},
	}

	assert.Equal(t, []string{
		"  ✎ b",
		"  ○ a",
		"  ✓ c",
	}, s.VerboseTests(assertions, true))
	assert.Nil(t, s.VerboseTests(nil, true))
}

func TestStyles_Result(t *testing.T) {
	s := PlainStyles()
	entry := results.CompletedEntry{
		Config: webProject,
		Result: events.TestResult{
			TestFilePath:    "/repo/src/a.test.js",
			NumFailingTests: 1,
			FailureMessage:  "  ● a › b",
			Console:         []events.ConsoleEntry{{Type: "log", Message: "hi", Origin: "/repo/src/a.test.js:1"}},
			Snapshot:        events.SnapshotStatus{Unmatched: 1},
			TestResults:     []events.AssertionResult{{Title: "b", Status: events.StatusFailed}},
		},
	}

	out := s.Result(entry, events.GlobalConfig{})
	lines := strings.Split(out, "\n")

	assert.Equal(t, " FAIL  src/a.test.js", lines[0])
	assert.Equal(t, "  ● Console:", lines[1], "no assertion tree unless verbose")
	assert.Contains(t, out, FailureMessage("  ● a › b"))
	assert.Equal(t, " ›  1 snapshot failed.", lines[len(lines)-1])

	verbose := s.Result(entry, events.GlobalConfig{Verbose: true})
	assert.Equal(t, "  ✕ b", strings.Split(verbose, "\n")[1])
}

func TestStyles_Result_ColourOnlyAddsEscapes(t *testing.T) {
	entry := results.CompletedEntry{
		Config: events.ProjectConfig{Name: "api", RootDir: "/repo", DisplayName: &events.DisplayName{Name: "api", Color: "blue"}},
		Result: events.TestResult{
			TestFilePath:    "/repo/src/users.test.js",
			NumFailingTests: 1,
			NumPassingTests: 1,
			Console:         []events.ConsoleEntry{{Type: "warn", Message: "careful", Origin: "/repo/src/users.js:3:9"}},
			Snapshot:        events.SnapshotStatus{Added: 2, Unchecked: 1, UncheckedKeys: []string{"users 1"}},
			TestResults: []events.AssertionResult{
				{AncestorTitles: []string{"users"}, Title: "creates", Status: events.StatusPassed, Duration: ms(12)},
				{AncestorTitles: []string{"users"}, Title: "rejects", Status: events.StatusFailed},
				{AncestorTitles: []string{"users"}, Title: "later", Status: events.StatusTodo},
			},
		},
	}
	cfg := events.GlobalConfig{Verbose: true}

	colored := ansiStyles().Result(entry, cfg)
	require.Contains(t, colored, "\x1b[")
	assert.Equal(t, PlainStyles().Result(entry, cfg), stripansi.Strip(colored))
}

func TestStyles_Result_FallsBackToGlobalRoot(t *testing.T) {
	s := PlainStyles()
	entry := results.CompletedEntry{Result: events.TestResult{TestFilePath: "/work/x/y.test.js"}}

	assert.Equal(t, " PASS  x/y.test.js", s.Result(entry, events.GlobalConfig{RootDir: "/work"}))
}

func TestStyles_Result_ExecErrorWithoutMessage(t *testing.T) {
	s := PlainStyles()
	entry := results.CompletedEntry{
		Config: webProject,
		Result: events.TestResult{
			TestFilePath:  "/repo/a.test.js",
			TestExecError: &events.ExecError{Message: "Cannot find module 'x'"},
		},
	}

	out := s.Result(entry, events.GlobalConfig{})
	assert.Equal(t, " FAIL  ./a.test.js\nCannot find module 'x'", out)
}
