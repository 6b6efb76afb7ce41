package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ansel1/marquee/config"
	"github.com/ansel1/marquee/engine"
	"github.com/ansel1/marquee/logging"
	"github.com/ansel1/marquee/output"
	"github.com/ansel1/marquee/output/format"
	"github.com/ansel1/marquee/results"
	"github.com/ansel1/marquee/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// errTestsFailed makes the process exit 1 without printing anything more.
var errTestsFailed = errors.New("tests failed")

type options struct {
	infile     string
	outfile    string
	jsonfile   string
	replay     bool
	rate       float64
	configPath string
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "marquee",
		Short: "Live status display for test runs",
		Long: `marquee renders a test engine's lifecycle events as a live terminal display.

Pipe the engine's newline-delimited JSON events into marquee. Completed test
files are printed as they finish; the files still running and the run totals
stay at the bottom of the screen until the run ends. Lines that are not
events are passed through unchanged.

  my-test-engine --reporter=json | marquee
  marquee -f run.ndjson --replay --rate 0.5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, stdin, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.infile, "file", "f", "", "Read from file instead of stdin")
	f.StringVar(&opts.outfile, "outfile", "", "Save all input to the specified file")
	f.StringVar(&opts.jsonfile, "jsonfile", "", "Save event records to the specified file")
	f.BoolVar(&opts.replay, "replay", false, "Replay events with timing from the original run (requires -f)")
	f.Float64Var(&opts.rate, "rate", 1.0, "Replay rate multiplier (0=instant, 1=original speed, 0.5=2x speed)")
	f.Bool("notty", false, "Don't use the live display, write plain output")
	f.Bool("silent", false, "Don't print the closing message")
	f.Bool("verbose", false, "List every test of each completed file")
	f.Bool("expand", false, "In verbose mode, list skipped and todo tests in place")
	f.Int("columns", 0, "Terminal width (0 = detect)")
	f.Duration("refresh", tui.DefaultRefresh, "Redraw interval of the elapsed time")
	f.String("log-file", "", "Write a diagnostic log to this file")
	f.Bool("debug", false, "Log debug messages")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Settings file (default ./"+config.FileName+" if present)")

	cmd.AddCommand(newConfigCmd(opts, stdout))
	return cmd
}

func newConfigCmd(opts *options, stdout io.Writer) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default settings to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			} else if opts.configPath != "" {
				path = opts.configPath
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func run(cmd *cobra.Command, opts *options, stdin io.Reader, stdout, stderr io.Writer) error {
	// Validate flag combinations
	if opts.replay && opts.infile == "" {
		return errors.New("--replay requires -f <filename>")
	}
	if opts.rate < 0 {
		return errors.New("--rate must be >= 0")
	}

	settings, err := config.Load(opts.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	// Skip the live display if:
	// 1. notty is set, OR
	// 2. stdout is not a terminal, OR
	// 3. -f is used without --replay (reading from file without replay)
	skipTUI := settings.NoTTY || !isTerminal(stdout) || (opts.infile != "" && !opts.replay)

	var console io.Writer
	if skipTUI {
		console = stderr
	}
	log, err := logging.New(settings.Log, console)
	if err != nil {
		return err
	}
	defer log.Close()

	// Setup input source (file or stdin)
	input := stdin
	if opts.infile != "" {
		f, err := os.Open(opts.infile)
		if err != nil {
			return fmt.Errorf("opening input file: %w", err)
		}
		defer f.Close()
		input = f

		if opts.replay {
			replayReader, err := engine.NewReplayReader(f, opts.rate)
			if err != nil {
				return fmt.Errorf("creating replay reader: %w", err)
			}
			input = replayReader
		}
	}

	var engineOpts []engine.Option
	if opts.outfile != "" {
		f, err := os.Create(opts.outfile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		engineOpts = append(engineOpts, engine.WithRawOutput(f))
	}
	if opts.jsonfile != "" {
		f, err := os.Create(opts.jsonfile)
		if err != nil {
			return fmt.Errorf("creating JSON file: %w", err)
		}
		defer f.Close()
		engineOpts = append(engineOpts, engine.WithJSONOutput(f))
	}

	collector := results.NewCollector(
		results.WithLogger(log.Logger),
		results.WithConfigOverride(settings.Apply),
	)
	engineEvents := engine.NewEngine(engineOpts...).Stream(input)

	log.Debug().
		Bool("tui", !skipTUI).
		Bool("replay", opts.replay).
		Str("input", opts.infile).
		Msg("starting")

	if skipTUI {
		simple := output.NewSimpleOutput(stdout, collector,
			output.WithWidth(terminalWidth(stdout, settings.Columns)),
			output.WithLogger(log.Logger),
		)
		if err := simple.ProcessEvents(engineEvents); err != nil {
			return fmt.Errorf("processing events: %w", err)
		}
		if simple.HasFailures() {
			return errTestsFailed
		}
		return nil
	}

	modelOpts := []tui.Option{
		tui.WithStyles(format.StylesFor(stdout)),
		tui.WithLogger(log.Logger),
		tui.WithRefresh(settings.Refresh),
		tui.WithColumns(settings.Columns),
	}
	if opts.replay {
		modelOpts = append(modelOpts, tui.WithReplay(opts.rate))
	}
	m := tui.NewModel(collector, modelOpts...)

	programOpts := []tea.ProgramOption{tea.WithOutput(stdout)}
	if opts.infile == "" {
		// stdin carries the events; read keys from the terminal instead
		programOpts = append(programOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(m, programOpts...)

	// Forward engine events to bubbletea
	go func() {
		for evt := range engineEvents {
			p.Send(tui.EngineEventMsg(evt))
		}
		// Signal completion
		p.Send(tui.EOFMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	// the program can exit without the model finishing the run
	if collector.Phase() == results.PhaseRunning {
		collector.Finish()
	}
	if collector.State().Results.HasFailures() {
		return errTestsFailed
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// terminalWidth returns the configured width, else the width of w when it
// is a terminal, else 0 (unknown).
func terminalWidth(w io.Writer, configured int) int {
	if configured > 0 {
		return configured
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func main() {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
