package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/ansel1/marquee/events"
	"github.com/ansel1/marquee/results"
	"github.com/charmbracelet/lipgloss"
)

// RunningPadding is the space reserved for the RUNS badge in front of the
// path of an in-flight test.
const RunningPadding = 8

// StatusBadge returns the FAIL or PASS badge, or "" for a skipped file.
func (s *Styles) StatusBadge(r events.TestResult) string {
	switch {
	case r.Skipped:
		return ""
	case r.Failed():
		return s.Badge("FAIL", colorRed)
	default:
		return s.Badge("PASS", colorGreen)
	}
}

// RunsBadge marks a test file that is still executing.
func (s *Styles) RunsBadge() string {
	return s.Badge("RUNS", colorYellow)
}

// DisplayName renders the project badge, or "" when the project has none.
// The plain string form is white; the object form uses its colour tag.
func (s *Styles) DisplayName(cfg events.ProjectConfig) string {
	dn := cfg.DisplayName
	if dn == nil || dn.Name == "" {
		return ""
	}
	color := colorWhite
	if dn.Color != "" {
		color = s.colorTag(dn.Color)
	}
	style := s.renderer.NewStyle().Foreground(color).Reverse(true)
	return style.Render(" "+dn.Name+" ") + " "
}

// ResultHeader is the first line of a completed file: badge, project and
// the full relative path.
func (s *Styles) ResultHeader(r events.TestResult, cfg events.ProjectConfig, fallbackDir string) string {
	baseDir := cfg.BaseDir()
	if baseDir == "" {
		baseDir = fallbackDir
	}
	return s.StatusBadge(r) + s.DisplayName(cfg) + s.FullPath(baseDir, r.TestFilePath)
}

// Running renders one line of the in-flight list, truncated to columns.
func (s *Styles) Running(p results.PendingEntry, columns int) string {
	return s.RunsBadge() + s.DisplayName(p.Config) + s.Path(p.Config.BaseDir(), p.Test.Path, columns, RunningPadding)
}

func (s *Styles) consoleStyle(typ string) lipgloss.Style {
	switch typ {
	case "warn":
		return s.Yellow
	case "error":
		return s.Red
	default:
		return s.Plain
	}
}

// Console renders buffered console output. Each entry gets its own header
// naming the call type and origin, followed by its indented message and a
// blank line. Verbose mode indents less, since the test tree already
// occupies the left margin.
func (s *Styles) Console(entries []events.ConsoleEntry, baseDir string, verbose bool) []string {
	if len(entries) == 0 {
		return nil
	}
	titleIndent := "    "
	if verbose {
		titleIndent = "  "
	}
	messageIndent := titleIndent + "  "

	lines := []string{"  " + s.Bold.Render(SymbolBullet) + " Console:", ""}
	for _, e := range entries {
		style := s.consoleStyle(e.Type)
		lines = append(lines, titleIndent+" "+
			style.Faint(true).Render("console."+e.Type)+" "+
			s.Dim.Render(RelativeOrigin(baseDir, e.Origin)))
		for _, msg := range strings.Split(e.Message, "\n") {
			lines = append(lines, style.Render(messageIndent+ExpandTabs(msg, 8)))
		}
		lines = append(lines, "")
	}
	return lines
}

// FailureMessage keeps the engine's failure text as is, except that spaces
// become non-breaking so wrapping terminals do not reflow its indentation.
func FailureMessage(msg string) string {
	return EnsureReset(strings.ReplaceAll(msg, " ", nbsp))
}

// StatusGlyph returns the coloured symbol for an assertion status.
func (s *Styles) StatusGlyph(status events.AssertionStatus) string {
	switch status {
	case events.StatusFailed:
		return s.Red.Render(SymbolFail)
	case events.StatusPending:
		return s.Yellow.Render(SymbolPending)
	case events.StatusTodo:
		return s.Magenta.Render(SymbolTodo)
	default:
		return s.Green.Render(SymbolPass)
	}
}

type suite struct {
	title  string
	tests  []events.AssertionResult
	suites []*suite
}

func (st *suite) child(title string) *suite {
	for _, c := range st.suites {
		if c.title == title {
			return c
		}
	}
	c := &suite{title: title}
	st.suites = append(st.suites, c)
	return c
}

// groupBySuite nests assertions under their describe blocks, keeping the
// order in which each block first appears.
func groupBySuite(assertions []events.AssertionResult) *suite {
	root := &suite{}
	for _, a := range assertions {
		target := root
		for _, title := range a.AncestorTitles {
			target = target.child(title)
		}
		target.tests = append(target.tests, a)
	}
	return root
}

const verboseIndent = "  "

// VerboseTests renders the per-assertion tree. Unless expand is set, skipped
// and todo assertions are listed after the others as one-line summaries.
func (s *Styles) VerboseTests(assertions []events.AssertionResult, expand bool) []string {
	if len(assertions) == 0 {
		return nil
	}
	var lines []string
	s.appendSuite(&lines, groupBySuite(assertions), 0, expand)
	return lines
}

func (s *Styles) appendSuite(lines *[]string, st *suite, depth int, expand bool) {
	if st.title != "" {
		*lines = append(*lines, strings.Repeat(verboseIndent, depth)+st.title)
	}
	indent := strings.Repeat(verboseIndent, depth+1)

	if expand {
		for _, t := range st.tests {
			*lines = append(*lines, indent+s.testLine(t))
		}
	} else {
		var normal, pending, todo []events.AssertionResult
		for _, t := range st.tests {
			switch t.Status {
			case events.StatusPending:
				pending = append(pending, t)
			case events.StatusTodo:
				todo = append(todo, t)
			default:
				normal = append(normal, t)
			}
		}
		for _, t := range normal {
			*lines = append(*lines, indent+s.testLine(t))
		}
		for _, t := range append(pending, todo...) {
			*lines = append(*lines, indent+s.collapsedLine(t))
		}
	}

	for _, c := range st.suites {
		s.appendSuite(lines, c, depth+1, expand)
	}
}

func (s *Styles) testLine(t events.AssertionResult) string {
	line := s.StatusGlyph(t.Status) + " " + s.Dim.Render(t.Title)
	if t.Duration != nil {
		if ms := math.Round(*t.Duration); ms != 0 {
			line += " " + s.Dim.Render("("+strconv.FormatFloat(ms, 'f', 0, 64)+"ms)")
		}
	}
	return line
}

func (s *Styles) collapsedLine(t events.AssertionResult) string {
	label := string(t.Status)
	if t.Status == events.StatusPending {
		label = "skipped"
	}
	return s.StatusGlyph(t.Status) + " " + s.Dim.Render(label+" "+t.Title)
}

// Result renders one completed test file for the static region: header,
// the assertion tree in verbose mode, console output, the failure message
// and the snapshot status.
func (s *Styles) Result(entry results.CompletedEntry, cfg events.GlobalConfig) string {
	r := entry.Result
	baseDir := entry.Config.BaseDir()
	if baseDir == "" {
		baseDir = cfg.RootDir
	}

	lines := []string{s.ResultHeader(r, entry.Config, cfg.RootDir)}
	if cfg.Verbose {
		lines = append(lines, s.VerboseTests(r.TestResults, cfg.Expand)...)
	}
	lines = append(lines, s.Console(r.Console, baseDir, cfg.Verbose)...)

	switch {
	case r.FailureMessage != "":
		lines = append(lines, FailureMessage(r.FailureMessage))
	case r.TestExecError != nil && r.TestExecError.Message != "":
		lines = append(lines, renderLines(s.Red, r.TestExecError.Message))
	}

	lines = append(lines, s.SnapshotStatus(r.Snapshot, cfg.DidUpdateSnapshots())...)
	return strings.Join(lines, "\n")
}
