package format

import (
	"strings"
	"testing"

	"github.com/ansel1/marquee/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluralize(t *testing.T) {
	assert.Equal(t, "1 snapshot", Pluralize("snapshot", 1))
	assert.Equal(t, "0 snapshots", Pluralize("snapshot", 0))
	assert.Equal(t, "3 test suites", Pluralize("test suite", 3))
}

func TestStyles_SnapshotStatus(t *testing.T) {
	s := PlainStyles()

	tests := []struct {
		name      string
		snap      events.SnapshotStatus
		didUpdate bool
		expected  []string
	}{
		{
			name:     "nothing to report",
			snap:     events.SnapshotStatus{Matched: 4},
			expected: nil,
		},
		{
			name: "written and obsolete",
			snap: events.SnapshotStatus{Added: 2, Unchecked: 3, UncheckedKeys: []string{"a 1", "b 1", "c 1"}},
			expected: []string{
				" ›  2 snapshots written.",
				" ›  3 snapshots obsolete.",
				"   • a 1",
				"   • b 1",
				"   • c 1",
			},
		},
		{
			name:      "removed after update",
			snap:      events.SnapshotStatus{Unchecked: 1, UncheckedKeys: []string{"gone 1"}},
			didUpdate: true,
			expected: []string{
				" ›  1 snapshot removed.",
				"   • gone 1",
			},
		},
		{
			name: "every line at once",
			snap: events.SnapshotStatus{Added: 1, Updated: 2, Unmatched: 3, FileDeleted: true},
			expected: []string{
				" ›  1 snapshot written.",
				" ›  2 snapshots updated.",
				" ›  3 snapshots failed.",
				" ›  snapshot file removed.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.SnapshotStatus(tt.snap, tt.didUpdate))
		})
	}
}

func TestStyles_SnapshotStatus_NoFailedLineWithoutMismatch(t *testing.T) {
	lines := PlainStyles().SnapshotStatus(events.SnapshotStatus{
		Added:         2,
		Unchecked:     3,
		UncheckedKeys: []string{"x", "y", "z"},
	}, false)

	joined := strings.Join(lines, "\n")
	assert.NotContains(t, joined, "failed")
	assert.Contains(t, joined, "written")
	assert.Contains(t, joined, "obsolete")
	assert.Equal(t, 3, strings.Count(joined, "•"))
}

func TestStyles_SnapshotSummary(t *testing.T) {
	s := PlainStyles()

	assert.Empty(t, s.SnapshotSummary(events.SnapshotSummary{Matched: 10, Total: 10}, "/repo"))

	out := s.SnapshotSummary(events.SnapshotSummary{
		Added:      2,
		FilesAdded: 1,
		Unmatched:  1, FilesUnmatched: 1,
		Unchecked: 2,
		UncheckedKeysByFile: []events.UncheckedKeysFile{
			{FilePath: "/repo/src/a.test.js", Keys: []string{"old 1", "old 2"}},
		},
	}, "/repo")

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Snapshot Summary", lines[0])
	assert.Equal(t, " › 2 snapshots written from 1 test suite.", lines[1])
	assert.Equal(t, " › 1 snapshot failed from 1 test suite. Inspect your code changes or re-run with `-u` to update them.", lines[2])
	assert.Equal(t, " › 2 snapshots obsolete from 1 test suite. To remove them all, re-run with `-u`.", lines[3])
	assert.Equal(t, "   ↳ src/a.test.js", lines[4])
	assert.Equal(t, "       • old 1", lines[5])
	assert.Equal(t, "       • old 2", lines[6])
}

func TestStyles_SnapshotSummary_FilesRemoved(t *testing.T) {
	s := PlainStyles()

	obsolete := s.SnapshotSummary(events.SnapshotSummary{FilesRemoved: 1}, "")
	assert.Contains(t, obsolete, " › 1 snapshot file obsolete from 1 test suite. To remove it, re-run with `-u`.")

	removed := s.SnapshotSummary(events.SnapshotSummary{FilesRemoved: 2, DidUpdate: true}, "")
	assert.Contains(t, removed, " › 2 snapshot files removed from 2 test suites.")
}
