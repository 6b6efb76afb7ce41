package format

import (
	"strings"

	"github.com/ansel1/marquee/events"
	"github.com/charmbracelet/lipgloss"
)

// SnapshotStatus renders the snapshot lines of one test file. Every
// condition is checked on its own, so several lines may render together.
// It returns nil when there is nothing to report.
func (s *Styles) SnapshotStatus(snap events.SnapshotStatus, didUpdate bool) []string {
	var lines []string
	line := func(style lipgloss.Style, text string) {
		lines = append(lines, style.Render(arrow+" "+text))
	}

	if snap.Added > 0 {
		line(s.Pass, Pluralize("snapshot", snap.Added)+" written.")
	}
	if snap.Updated > 0 {
		line(s.Pass, Pluralize("snapshot", snap.Updated)+" updated.")
	}
	if snap.Unmatched > 0 {
		line(s.Fail, Pluralize("snapshot", snap.Unmatched)+" failed.")
	}
	if snap.Unchecked > 0 {
		if didUpdate {
			line(s.Pass, Pluralize("snapshot", snap.Unchecked)+" removed.")
		} else {
			line(s.Warn, Pluralize("snapshot", snap.Unchecked)+" obsolete.")
		}
		for _, key := range snap.UncheckedKeys {
			lines = append(lines, "  "+dot+key)
		}
	}
	if snap.FileDeleted {
		line(s.Pass, "snapshot file removed.")
	}
	return lines
}

// updateCommand is the hint for refreshing snapshots.
const updateCommand = "re-run with `-u`"

// SnapshotSummary renders the end-of-run snapshot block. baseDir shortens
// the paths of files with obsolete snapshots. It returns "" when no
// snapshot was written, updated, failed, removed or left obsolete.
func (s *Styles) SnapshotSummary(snap events.SnapshotSummary, baseDir string) string {
	if snap.Added == 0 && snap.Unmatched == 0 && snap.Updated == 0 &&
		snap.FilesRemoved == 0 && snap.Unchecked == 0 {
		return ""
	}

	lines := []string{s.Bold.Render("Snapshot Summary")}
	from := func(n int) string { return " from " + Pluralize("test suite", n) + "." }
	hint := func(n int) string {
		target := "them all"
		if n == 1 {
			target = "it"
		}
		return " " + s.Dim.Render("To remove "+target+", "+updateCommand+".")
	}

	if snap.Added > 0 {
		lines = append(lines, s.Pass.Render(arrow+Pluralize("snapshot", snap.Added)+" written")+from(snap.FilesAdded))
	}
	if snap.Unmatched > 0 {
		lines = append(lines, s.Fail.Render(arrow+Pluralize("snapshot", snap.Unmatched)+" failed")+
			from(snap.FilesUnmatched)+" "+
			s.Dim.Render("Inspect your code changes or "+updateCommand+" to update them."))
	}
	if snap.Updated > 0 {
		lines = append(lines, s.Pass.Render(arrow+Pluralize("snapshot", snap.Updated)+" updated")+from(snap.FilesUpdated))
	}
	if snap.FilesRemoved > 0 {
		if snap.DidUpdate {
			lines = append(lines, s.Pass.Render(arrow+Pluralize("snapshot file", snap.FilesRemoved)+" removed")+from(snap.FilesRemoved))
		} else {
			lines = append(lines, s.Warn.Render(arrow+Pluralize("snapshot file", snap.FilesRemoved)+" obsolete")+
				from(snap.FilesRemoved)+hint(snap.FilesRemoved))
		}
	}
	if snap.Unchecked > 0 {
		files := len(snap.UncheckedKeysByFile)
		if snap.DidUpdate {
			lines = append(lines, s.Pass.Render(arrow+Pluralize("snapshot", snap.Unchecked)+" removed")+from(files))
		} else {
			lines = append(lines, s.Warn.Render(arrow+Pluralize("snapshot", snap.Unchecked)+" obsolete")+
				from(files)+hint(snap.Unchecked))
		}
		for _, file := range snap.UncheckedKeysByFile {
			lines = append(lines, "  "+downArrow+s.FullPath(baseDir, file.FilePath))
			for _, key := range file.Keys {
				lines = append(lines, "      "+dot+key)
			}
		}
	}
	return strings.Join(lines, "\n")
}
