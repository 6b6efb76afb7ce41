package format

import (
	"strconv"
	"strings"

	"github.com/ansel1/marquee/events"
)

// PostMessage renders the closing sentence of a run. Silent runs render
// nothing and interrupted runs only say so. Otherwise the sentence names
// the path filter, the name filter and the project count, each when it
// applies, in that order.
func (s *Styles) PostMessage(agg events.AggregatedResult, cfg events.GlobalConfig, contexts int) string {
	if cfg.Silent {
		return ""
	}
	if agg.WasInterrupted {
		return s.Fail.Render("Test run was interrupted.")
	}

	var b strings.Builder
	b.WriteString(s.Dim.Render("Ran all test suites"))

	switch {
	case cfg.RunTestsByPath:
		b.WriteString(" " + s.Dim.Render("within paths"))
	case cfg.OnlyChanged:
		b.WriteString(" " + s.Dim.Render("related to changed files"))
	case cfg.TestPathPattern != "":
		label := "matching"
		if cfg.FindRelatedTests {
			label = "related to files matching"
		}
		b.WriteString(" " + s.Dim.Render(label) + " /" + cfg.TestPathPattern + "/")
	}

	switch {
	case cfg.RunTestsByPath:
		quoted := make([]string, len(cfg.NonFlagArgs))
		for i, p := range cfg.NonFlagArgs {
			quoted[i] = `"` + p + `"`
		}
		if len(quoted) > 0 {
			b.WriteString(" " + strings.Join(quoted, ", "))
		}
	case cfg.TestNamePattern != "":
		b.WriteString(" " + s.Dim.Render("with tests matching") + " \"" + cfg.TestNamePattern + "\"")
	}

	if contexts > 1 {
		b.WriteString(" " + s.Dim.Render("in") + " " + strconv.Itoa(contexts) + s.Dim.Render(" projects"))
	}

	b.WriteString(s.Dim.Render("."))
	return b.String()
}
