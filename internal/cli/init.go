package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
)

// InitResult reports a created or verified database.
type InitResult struct {
	Database string   `json:"database"`
	Layout   string   `json:"layout"`
	Tables   []string `json:"tables"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the hit database and its tables",
		Long: `Create the hit database at <game-dir>/UserData/HitDatabase.sqlite
(or --db) and every missing table. Existing tables are left untouched.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	st, path, err := opts.openStore(commandContext(cmd), cfg.BatchSize, opts.logger(cmd, cfg), false)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	if err := st.Close(); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeDatabase, "failed to close database", err)
	}

	result := InitResult{Database: path, Layout: ir.LayoutVersion}
	for _, t := range schema.HitData().Tables() {
		result.Tables = append(result.Tables, t.Name)
	}
	formatter.VerboseLog("tables: %v", result.Tables)

	return formatter.Success(result, fmt.Sprintf("Database ready: %s (layout %s)", path, result.Layout))
}
