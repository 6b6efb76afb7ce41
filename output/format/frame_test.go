package format

import (
	"strings"
	"testing"

	"github.com/ansel1/marquee/events"
	"github.com/ansel1/marquee/results"
	"github.com/stretchr/testify/assert"
)

func TestStyles_Live_Running(t *testing.T) {
	s := PlainStyles()
	state := results.NewRunState(events.AggregatedResult{NumTotalTestSuites: 2})
	state = results.Reduce(state, events.TestStarted{
		Test:   events.Identity{Path: "/repo/a.test.js", Project: "web"},
		Config: webProject,
	})

	out := s.Live(Frame{State: state, Summary: SummaryOptions{RunTime: 1}})

	assert.True(t, strings.HasPrefix(out, " RUNS  ./a.test.js\n\nTest Suites: 0 of 2 total\n"))
	assert.NotContains(t, out, "Ran all test suites")
}

func TestStyles_Live_Done(t *testing.T) {
	s := PlainStyles()
	final := events.AggregatedResult{
		NumPassedTestSuites: 1, NumTotalTestSuites: 1,
		Snapshot: events.SnapshotSummary{Added: 1, FilesAdded: 1, Total: 1},
	}
	state := results.Reduce(results.NewRunState(final), events.RunCompleted{
		Contexts: events.NewContexts(webProject),
	})

	out := s.Live(Frame{State: state, Summary: SummaryOptions{RunTime: 2, Done: true}})
	blocks := strings.Split(out, "\n\n")

	assert.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[0], "Snapshot Summary\n"))
	assert.True(t, strings.HasSuffix(blocks[1], "Time:        2s\nRan all test suites."))
}

func TestStyles_Live_SilentDone(t *testing.T) {
	s := PlainStyles()
	state := results.Reduce(results.NewRunState(events.AggregatedResult{}), events.RunCompleted{})

	out := s.Live(Frame{State: state, Config: events.GlobalConfig{Silent: true}, Summary: SummaryOptions{Done: true}})

	assert.True(t, strings.HasSuffix(out, "Time:        0s"))
}

func TestStyles_RunningList_Prefix(t *testing.T) {
	s := PlainStyles()
	pending := []results.PendingEntry{{
		Test:   events.Identity{Path: "/repo/source/a.test.js"},
		Config: webProject,
	}}

	assert.Nil(t, s.RunningList(nil, 80, "* "))
	assert.Equal(t, []string{"*  RUNS  source/a.test.js"}, s.RunningList(pending, Unbounded, "* "))
	// the prefix eats two of the columns, leaving exactly base+4 for the path
	assert.Equal(t, []string{"*  RUNS  …/a.test.js"}, s.RunningList(pending, 2+RunningPadding+13, "* "))
}
