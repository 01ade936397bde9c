package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/hitdata/internal/script"
)

// ValidationResult is the outcome of checking one script.
type ValidationResult struct {
	File  string `json:"file"`
	Name  string `json:"name,omitempty"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <script.yaml>...",
		Short: "Check play scripts without replaying them",
		Long: `Check play scripts against the script schema and the recorder's
rules without touching a database.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	results := make([]ValidationResult, 0, len(paths))
	var text []string
	invalid := 0
	for _, path := range paths {
		formatter.VerboseLog("validating %s", path)
		res := ValidationResult{File: path, Valid: true}
		s, err := script.Load(path)
		if err != nil {
			res.Valid = false
			res.Error = err.Error()
			invalid++
			text = append(text, path+": "+err.Error())
		} else {
			res.Name = s.Name
			text = append(text, path+": ok")
		}
		results = append(results, res)
	}

	if invalid > 0 {
		if formatter.Format == "json" {
			_ = formatter.Error(ErrCodeScript, "invalid scripts", results)
		} else {
			_ = formatter.Success(nil, text...)
		}
		return NewExitError(ExitFailure, "invalid scripts")
	}

	return formatter.Success(results, text...)
}
