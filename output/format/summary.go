package format

import (
	"strconv"
	"strings"

	"github.com/ansel1/marquee/events"
	"github.com/charmbracelet/lipgloss"
)

// headingWidth is the column the row values start at.
const headingWidth = 13

// SummaryOptions carries the time-dependent inputs of the summary block.
type SummaryOptions struct {
	// RunTime is the elapsed seconds to show. The caller computes it (see
	// Elapsed) so that rendering the same state twice gives the same text.
	RunTime float64
	// EstimatedTime is the engine's estimate in seconds, 0 when unknown.
	EstimatedTime float64
	// Width is the terminal width, 0 when unknown.
	Width int
	// Done suppresses the estimate and the progress bar.
	Done bool
}

// segment is one "N label" part of a summary row.
type segment struct {
	n     int
	label string
	style lipgloss.Style
}

func (s *Styles) heading(text string) string {
	h := s.Bold.Render(text + ":")
	if pad := headingWidth - lipgloss.Width(h); pad > 0 {
		h += strings.Repeat(" ", pad)
	}
	return h
}

// row joins the non-zero segments and the trailing total with ", ".
func (s *Styles) row(heading string, segs []segment, total string) string {
	var parts []string
	for _, seg := range segs {
		if seg.n > 0 {
			parts = append(parts, seg.style.Render(strconv.Itoa(seg.n)+" "+seg.label))
		}
	}
	parts = append(parts, total)
	return s.heading(heading) + strings.Join(parts, ", ")
}

// SuitesRow renders the "Test Suites:" row. When not every suite has run
// yet the total reads "R of T total".
func (s *Styles) SuitesRow(agg events.AggregatedResult) string {
	run := agg.NumFailedTestSuites + agg.NumPassedTestSuites
	total := strconv.Itoa(agg.NumTotalTestSuites) + " total"
	if run != agg.NumTotalTestSuites {
		total = strconv.Itoa(run) + " of " + total
	}
	return s.row("Test Suites", []segment{
		{agg.NumFailedTestSuites, "failed", s.Fail},
		{agg.NumPendingTestSuites, "skipped", s.Warn},
		{agg.NumPassedTestSuites, "passed", s.Pass},
	}, total)
}

// TestsRow renders the "Tests:" row.
func (s *Styles) TestsRow(agg events.AggregatedResult) string {
	return s.row("Tests", []segment{
		{agg.NumFailedTests, "failed", s.Fail},
		{agg.NumPendingTests, "skipped", s.Warn},
		{agg.NumTodoTests, "todo", s.Todo},
		{agg.NumPassedTests, "passed", s.Pass},
	}, strconv.Itoa(agg.NumTotalTests)+" total")
}

// SnapshotsRow renders the "Snapshots:" row. Obsolete snapshots and files
// read as removed when the run updated snapshots.
func (s *Styles) SnapshotsRow(snap events.SnapshotSummary) string {
	var parts []string
	add := func(n int, text string, style lipgloss.Style) {
		if n > 0 {
			parts = append(parts, style.Render(text))
		}
	}

	add(snap.Unmatched, strconv.Itoa(snap.Unmatched)+" failed", s.Fail)
	if snap.DidUpdate {
		add(snap.Unchecked, strconv.Itoa(snap.Unchecked)+" removed", s.Pass)
		add(snap.FilesRemoved, Pluralize("file", snap.FilesRemoved)+" removed", s.Pass)
	} else {
		add(snap.Unchecked, strconv.Itoa(snap.Unchecked)+" obsolete", s.Warn)
		add(snap.FilesRemoved, Pluralize("file", snap.FilesRemoved)+" obsolete", s.Warn)
	}
	add(snap.Updated, strconv.Itoa(snap.Updated)+" updated", s.Pass)
	add(snap.Added, strconv.Itoa(snap.Added)+" written", s.Pass)
	add(snap.Matched, strconv.Itoa(snap.Matched)+" passed", s.Pass)
	parts = append(parts, strconv.Itoa(snap.Total)+" total")

	return s.heading("Snapshots") + strings.Join(parts, ", ")
}

// TimeRow renders the "Time:" row.
func (s *Styles) TimeRow(opts SummaryOptions) string {
	return s.heading("Time") + s.Time(opts.RunTime, opts.EstimatedTime, opts.Done)
}

// Summary renders the summary block: the three count rows, the time row
// and, while the run is in progress, the progress bar.
func (s *Styles) Summary(agg events.AggregatedResult, opts SummaryOptions) string {
	lines := []string{
		s.SuitesRow(agg),
		s.TestsRow(agg),
		s.SnapshotsRow(agg.Snapshot),
		s.TimeRow(opts),
	}
	if bar := s.ProgressBar(opts.RunTime, opts.EstimatedTime, opts.Width, opts.Done); bar != "" {
		lines = append(lines, bar)
	}
	return strings.Join(lines, "\n")
}
