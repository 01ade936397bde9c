package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/hitdata/internal/config"
	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
	"github.com/roach88/hitdata/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	GameDir    string
	Database   string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the hitdata CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "hitdata",
		Short:   "hitdata - per-note hit recorder",
		Long:    "Records every note hit, miss and bomb hit of a play into an embedded SQLite database.",
		Version: ir.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "hitdata.yaml", "path to the YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.GameDir, "game-dir", ".", "game directory holding UserData/")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "database path (overrides --game-dir)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig reads the config file and HITDATA_* overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.ConfigPath)
}

// databasePath resolves --db, falling back to the fixed game location.
func (o *RootOptions) databasePath() string {
	if o.Database != "" {
		return o.Database
	}
	return config.DatabasePath(o.GameDir)
}

// logger writes recorder diagnostics to stderr. --verbose forces debug.
func (o *RootOptions) logger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// openStore opens the database. With mustExist set, a missing file is an
// error instead of being created.
func (o *RootOptions) openStore(ctx context.Context, batchSize int, logger *slog.Logger, mustExist bool) (*store.Store, string, error) {
	path := o.databasePath()
	if mustExist {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, path, fmt.Errorf("database not found: %s", path)
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, path, fmt.Errorf("create database directory: %w", err)
	}
	st, err := store.Open(ctx, path, schema.HitData(), store.Options{BatchSize: batchSize, Logger: logger})
	return st, path, err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
