package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hitdata/internal/recorder"
	"github.com/roach88/hitdata/internal/script"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Snapshot bool

	// Clock and Tokens are injected by tests. Nil uses the system clock
	// and UUIDv7 tokens.
	Clock  recorder.Clock
	Tokens recorder.TokenGenerator
}

// PlayOutput is the JSON payload of the play command.
type PlayOutput struct {
	Database string         `json:"database"`
	Result   *script.Result `json:"result"`
	Snapshot string         `json:"snapshot,omitempty"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}
	return newPlayCommand(opts)
}

func newPlayCommand(opts *PlayOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play <script.yaml>",
		Short: "Replay a play script into the hit database",
		Long: `Replay a YAML play script through the recorder, exactly as the game
would drive it, then check the script's expected row counts.
Expected counts cover the whole database, so replay into a fresh one.

Example:
  hitdata play testdata/scenario.yaml --db /tmp/hits.sqlite --snapshot`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Snapshot, "snapshot", false, "print every table after the replay")

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	s, err := script.Load(path)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeScript, "invalid script "+path, err)
	}
	formatter.VerboseLog("loaded script %s with %d play(s)", s.Name, len(s.Plays))

	effective := s.Effective(cfg)
	logger := opts.logger(cmd, &effective)

	ctx := commandContext(cmd)
	st, dbPath, err := opts.openStore(ctx, effective.BatchSize, logger, false)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	result, err := script.Run(ctx, s, st, script.Options{
		Config: &effective,
		Logger: logger,
		Clock:  opts.Clock,
		Tokens: opts.Tokens,
	})
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeReplay, "replay failed", err)
	}

	out := PlayOutput{Database: dbPath, Result: result}
	if opts.Snapshot {
		snap, err := script.Snapshot(ctx, st)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to snapshot database", err)
		}
		out.Snapshot = string(snap)
	}

	if err := st.Flush(); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to commit replay", err)
	}

	if errs := script.Check(s, result); len(errs) > 0 {
		details := make([]string, len(errs))
		for i, e := range errs {
			details[i] = e.Error()
		}
		_ = formatter.Error(ErrCodeExpectation, fmt.Sprintf("%d expectation(s) not met", len(errs)), details)
		if formatter.Format != "json" {
			for _, d := range details {
				fmt.Fprintln(formatter.Writer, "  "+d)
			}
		}
		return NewExitError(ExitFailure, "expectations not met")
	}

	return formatter.Success(out, renderPlay(out)...)
}

func renderPlay(out PlayOutput) []string {
	r := out.Result
	lines := []string{fmt.Sprintf("Replayed %s into %s", r.Name, out.Database)}
	for _, p := range r.Plays {
		lines = append(lines, fmt.Sprintf("  play %d: %s, %d note hit(s), %d bomb hit(s), %d pending, %d dropped",
			p.PlayID, p.State, p.NoteHits, p.BombHits, p.Pending, p.Dropped))
	}
	if out.Snapshot != "" {
		lines = append(lines, "", out.Snapshot)
	}
	return lines
}
