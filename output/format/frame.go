package format

import (
	"strings"

	"github.com/ansel1/marquee/events"
	"github.com/ansel1/marquee/results"
	"github.com/charmbracelet/lipgloss"
)

// Frame is everything the live region needs for one render.
type Frame struct {
	State   results.RunState
	Config  events.GlobalConfig
	Summary SummaryOptions

	// RunningPrefix is drawn before every in-flight line (a spinner, say).
	// Its width is taken from the columns available to the path.
	RunningPrefix string
}

// RunningList renders one line per in-flight test file, or nil.
func (s *Styles) RunningList(pending []results.PendingEntry, columns int, prefix string) []string {
	if len(pending) == 0 {
		return nil
	}
	if columns != Unbounded && prefix != "" {
		columns = max(columns-lipgloss.Width(prefix), 1)
	}
	lines := make([]string, 0, len(pending))
	for _, p := range pending {
		lines = append(lines, prefix+s.Running(p, columns))
	}
	return lines
}

// Live renders the overwritable part of the display: in-flight tests, the
// summary and, once the run is done, the snapshot summary and closing
// message. Completed results are not included; they belong to the
// append-only region.
func (s *Styles) Live(f Frame) string {
	var blocks []string

	if running := s.RunningList(f.State.Pending, f.Summary.Width, f.RunningPrefix); len(running) > 0 {
		blocks = append(blocks, strings.Join(running, "\n"))
	}
	if f.State.Done {
		if snap := s.SnapshotSummary(f.State.Results.Snapshot, f.Config.RootDir); snap != "" {
			blocks = append(blocks, snap)
		}
	}

	summary := s.Summary(f.State.Results, f.Summary)
	if f.State.Done {
		if msg := s.PostMessage(f.State.Results, f.Config, len(f.State.Contexts)); msg != "" {
			summary += "\n" + msg
		}
	}
	blocks = append(blocks, summary)

	return strings.Join(blocks, "\n\n")
}
