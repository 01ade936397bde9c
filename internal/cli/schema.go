package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hitdata/internal/schema"
)

// TableDDL is the CREATE statement of one table.
type TableDDL struct {
	Table string `json:"table"`
	SQL   string `json:"sql"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "schema",
		Short:         "Print the CREATE TABLE statements",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, cmd)
		},
	}
}

func runSchema(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	reg := schema.HitData()

	var tables []TableDDL
	var text []string
	for _, t := range reg.Tables() {
		stmt, err := reg.BuildCreateStatement(t.Name)
		if err != nil {
			return formatter.fail(ExitFailure, ErrCodeDatabase, "failed to build schema", err)
		}
		tables = append(tables, TableDDL{Table: t.Name, SQL: stmt})
		text = append(text, stmt+";")
	}

	return formatter.Success(tables, strings.Join(text, "\n\n"))
}
