package tui

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/ansel1/marquee/engine"
	"github.com/ansel1/marquee/events"
	"github.com/ansel1/marquee/output/format"
	"github.com/ansel1/marquee/results"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// EngineEventMsg wraps engine events for bubbletea
type EngineEventMsg engine.Event

// EOFMsg signals that the input stream has been closed
type EOFMsg struct{}

// TickMsg refreshes the elapsed time. It never changes the run state.
type TickMsg time.Time

// DefaultRefresh is how often the Time row and progress bar are redrawn.
const DefaultRefresh = time.Second

// Model is the live terminal display of one run.
//
// Completed test files are printed above the program with tea.Println, so
// they scroll away like ordinary output and are never redrawn. View only
// renders the live region: the running files, the summary and, at the end,
// the closing message.
//
// The model drives the collector itself: lifecycle events are dispatched
// from Update, and the subscription hands each resulting snapshot back
// before Dispatch returns.
type Model struct {
	collector *results.Collector
	token     results.Token
	styles    *format.Styles
	log       zerolog.Logger
	now       func() time.Time
	refresh   time.Duration

	// latest snapshot, and completed entries not yet printed
	snap    results.Snapshot
	printed int
	queued  []results.CompletedEntry

	// Terminal state
	TerminalWidth  int
	TerminalHeight int
	columns        int // fixed width; window size messages don't override it

	// Replay state
	ReplayMode bool
	ReplayRate float64
	wallStart  time.Time

	// State tracking
	Finished bool    // the run completed or was interrupted
	quitting bool    // the program is exiting with nothing to show
	runTime  float64 // seconds shown in the Time row; frozen once Finished
	spinner  spinner.Model
}

// Option configures a Model.
type Option func(*Model)

// WithStyles sets the styles used for rendering.
func WithStyles(s *format.Styles) Option {
	return func(m *Model) {
		m.styles = s
	}
}

// WithLogger sets the logger for dropped events and input errors.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Model) {
		m.log = log
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		m.now = now
	}
}

// WithRefresh sets the redraw interval of the elapsed time.
func WithRefresh(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.refresh = d
		}
	}
}

// WithColumns fixes the width used for the progress bar and path
// truncation, ignoring the terminal's reported size. 0 follows the terminal.
func WithColumns(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.columns = n
			m.TerminalWidth = n
		}
	}
}

// WithReplay shows simulated time for a replayed run. rate is the replay
// rate multiplier; elapsed wall time is divided by it.
func WithReplay(rate float64) Option {
	return func(m *Model) {
		m.ReplayMode = true
		m.ReplayRate = rate
	}
}

// NewModel creates a new TUI model fed by collector.
func NewModel(collector *results.Collector, opts ...Option) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		collector: collector,
		log:       zerolog.Nop(),
		now:       time.Now,
		refresh:   DefaultRefresh,
		spinner:   s,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.styles == nil {
		m.styles = format.PlainStyles()
	}
	m.spinner.Style = m.styles.Yellow
	m.snap = collector.Snapshot()
	m.printed = len(m.snap.State.Completed)
	m.token = collector.Subscribe(m.onSnapshot)
	return m
}

// onSnapshot runs inside collector.Dispatch, which the model only calls
// from Update, so it never races with View.
func (m *Model) onSnapshot(snap results.Snapshot) {
	m.snap = snap
	m.queued = append(m.queued, snap.NewlyCompleted...)
	if m.wallStart.IsZero() && snap.Phase != results.PhaseNotStarted {
		m.wallStart = m.now()
	}
}

// Init starts the spinner and the elapsed time ticker.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EngineEventMsg:
		return m, m.handleEngineEvent(engine.Event(msg))

	case EOFMsg:
		if m.Finished {
			return m, nil
		}
		if m.collector.Phase() == results.PhaseNotStarted {
			m.quitting = true
			return m, m.quit(nil)
		}
		m.log.Warn().Msg("input closed before the run completed")
		m.collector.Finish()
		return m, m.flush()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.Finished {
				return m, nil
			}
			m.log.Info().Str("key", msg.String()).Msg("run interrupted")
			if m.collector.Phase() == results.PhaseNotStarted || !m.collector.Finish() {
				m.quitting = true
				return m, m.quit(nil)
			}
			return m, m.flush()
		}

	case tea.WindowSizeMsg:
		m.TerminalHeight = msg.Height
		if m.columns == 0 {
			m.TerminalWidth = msg.Width
		}

	case TickMsg:
		if m.Finished {
			return m, nil
		}
		m.runTime = m.elapsed()
		return m, m.tick()

	case spinner.TickMsg:
		if m.Finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleEngineEvent(evt engine.Event) tea.Cmd {
	switch evt.Type {
	case engine.EventRawLine:
		return tea.Println(format.EnsureReset(string(evt.RawLine)))

	case engine.EventLifecycle:
		if err := m.collector.Dispatch(evt.Lifecycle); err != nil {
			if errors.Is(err, results.ErrRunFinished) {
				m.log.Debug().Str("event", evt.Lifecycle.Kind()).Msg("event after run finished")
			} else {
				m.log.Warn().Err(err).Str("event", evt.Lifecycle.Kind()).Msg("event dropped")
			}
			return nil
		}
		return m.flush()

	case engine.EventError:
		m.log.Warn().Err(evt.Error).Msg("input error")
		return tea.Println("Error: " + evt.Error.Error())

	case engine.EventComplete:
		// EOFMsg follows once the channel is drained
	}
	return nil
}

// flush prints newly completed files and, when the run has finished,
// freezes the display and quits after the prints.
func (m *Model) flush() tea.Cmd {
	var cmds []tea.Cmd
	for _, entry := range m.queued {
		cmds = append(cmds, tea.Println(m.styles.Result(entry, m.snap.Config)))
		m.printed++
	}
	m.queued = nil

	if m.snap.Phase == results.PhaseFinished && !m.Finished {
		m.Finished = true
		m.runTime = m.elapsed()
		return m.quit(cmds)
	}
	if !m.Finished {
		m.runTime = m.elapsed()
	}
	return tea.Sequence(cmds...)
}

func (m *Model) quit(cmds []tea.Cmd) tea.Cmd {
	m.collector.Unsubscribe(m.token)
	return tea.Sequence(append(cmds, tea.Quit)...)
}

// elapsed returns whole seconds since the run started. In replay mode the
// recorded start time is meaningless, so wall time since the first event is
// scaled by the replay rate instead.
func (m *Model) elapsed() float64 {
	if m.ReplayMode {
		if m.wallStart.IsZero() {
			return 0
		}
		wall := m.now().Sub(m.wallStart).Seconds()
		if m.ReplayRate > 0 {
			wall /= m.ReplayRate
		}
		return math.Floor(wall)
	}
	return format.Elapsed(m.snap.State.Results.StartTime, m.now(), true)
}

// View renders the live region.
func (m *Model) View() string {
	if m.quitting || m.snap.Phase == results.PhaseNotStarted {
		return ""
	}
	prefix := ""
	if !m.Finished {
		prefix = m.spinner.View() + " "
	}
	frame := format.Frame{
		State:  m.snap.State,
		Config: m.snap.Config,
		Summary: format.SummaryOptions{
			RunTime:       m.runTime,
			EstimatedTime: m.snap.Options.EstimatedTime,
			Width:         m.TerminalWidth,
			Done:          m.snap.State.Done,
		},
		RunningPrefix: prefix,
	}
	return format.ExpandTabs(m.styles.Live(frame), 8)
}

// String renders the TUI (for backward compatibility)
func (m *Model) String() string {
	return m.View()
}

// State returns the run state the model last rendered.
func (m *Model) State() results.RunState {
	return m.snap.State
}

// Config returns the effective global config of the run.
func (m *Model) Config() events.GlobalConfig {
	return m.snap.Config
}

// HasFailures returns true if the run failed or was interrupted.
func (m *Model) HasFailures() bool {
	return m.snap.State.Results.HasFailures()
}

// Printed returns the number of completed files written to the static region.
func (m *Model) Printed() int {
	return m.printed
}

// Lines splits a rendered view for assertions and debugging.
func Lines(view string) []string {
	return strings.Split(strings.TrimRight(view, "\n"), "\n")
}
