package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/insight/internal/queryir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Dataset string   `json:"dataset,omitempty"`
	Kind    string   `json:"kind,omitempty"`
	Columns []string `json:"columns,omitempty"`
	Grouped bool     `json:"grouped"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &sourceFlags{}

	cmd := &cobra.Command{
		Use:   "validate <query-file>",
		Short: "Validate a query without evaluating it",
		Long: `Validate a query document against the known dataset IDs without touching
any records. Reports the first violation with its location in the query.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, *flags, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&flags.datasets, "dataset", nil, "load a dataset file for this command (id=kind:path, repeatable)")

	return cmd
}

func runValidate(cmd *cobra.Command, rootOpts *RootOptions, flags sourceFlags, path string) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, err := LoadQuery(path)
	if err != nil {
		return reportError(formatter, err)
	}

	cat, err := buildCatalog(cmd.Context(), rootOpts, flags)
	if err != nil {
		return reportError(formatter, err)
	}

	q, err := queryir.Validate(doc, cat.IDs())
	if err != nil {
		return outputValidationError(formatter, err)
	}

	result := ValidationResult{
		Valid:   true,
		Dataset: q.DatasetID,
		Kind:    string(q.Kind),
		Columns: q.Options.ColumnNames(),
		Grouped: q.HasTransformations(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Query valid (dataset %s, %s)\n", result.Dataset, result.Kind)
	return nil
}

// outputValidationError reports a rejected query. Validation failures exit 1.
func outputValidationError(formatter *OutputFormatter, err error) error {
	path, message := "", err.Error()
	var verr *queryir.ValidationError
	if errors.As(err, &verr) {
		path, message = verr.Path, verr.Message
	}

	if formatter.Format == "json" {
		var details any
		if path != "" {
			details = map[string]string{"path": path}
		}
		_ = formatter.Error("INVALID_QUERY", message, details)
		return NewExitError(ExitFailure, "validation failed")
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	if path != "" {
		fmt.Fprintf(formatter.Writer, "  at %s\n", path)
	}
	fmt.Fprintf(formatter.Writer, "  %s\n", message)
	return NewExitError(ExitFailure, "validation failed")
}
