package cli

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/hitdata/internal/script"
)

// TableCount is the row count of one table.
type TableCount struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
}

// StatsResult lists row counts in table declaration order.
type StatsResult struct {
	Database string       `json:"database"`
	Tables   []TableCount `json:"tables"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Print the row count of every table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	ctx := commandContext(cmd)
	st, path, err := opts.openStore(ctx, cfg.BatchSize, opts.logger(cmd, cfg), true)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	rows, err := script.CountRows(ctx, st)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to count rows", err)
	}

	result := StatsResult{Database: path}
	for _, t := range st.Registry().Tables() {
		result.Tables = append(result.Tables, TableCount{Table: t.Name, Rows: rows[t.Name]})
	}

	return formatter.Success(result, renderCounts(result.Tables))
}

func renderCounts(counts []TableCount) string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tROWS")
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\n", c.Table, c.Rows)
	}
	w.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
