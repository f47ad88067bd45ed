package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/insight/internal/engine"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	sourceFlags
	MaxRows   int
	MaxGroups int
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <query-file>",
		Short: "Evaluate a query against the loaded datasets",
		Long: `Evaluate a query document (.json, .yaml or .cue) against the datasets in
the database (--db) and any datasets given with --dataset id=kind:path.

Text output renders the result rows as a table. JSON output wraps them in the
standard response envelope; trace_id carries the query ID that also appears in
the logs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.datasets, "dataset", nil, "load a dataset file for this command (id=kind:path, repeatable)")
	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", engine.DefaultMaxRows, "maximum rows for an ungrouped query")
	cmd.Flags().IntVar(&opts.MaxGroups, "max-groups", engine.DefaultMaxGroups, "maximum groups for a query with TRANSFORMATIONS")

	return cmd
}

func runQuery(cmd *cobra.Command, rootOpts *RootOptions, opts *QueryOptions, path string) error {
	formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, err := LoadQuery(path)
	if err != nil {
		return reportError(formatter, err)
	}

	cat, err := buildCatalog(cmd.Context(), rootOpts, opts.sourceFlags)
	if err != nil {
		return reportError(formatter, err)
	}
	formatter.VerboseLog("Loaded %s", plural(len(cat.IDs()), "dataset"))

	eng := engine.New(cat, engine.WithLimits(engine.Limits{
		MaxRows:   opts.MaxRows,
		MaxGroups: opts.MaxGroups,
	}))

	result, err := eng.Query(doc)
	if err != nil {
		return reportError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithTrace(result, result.QueryID)
	}

	header, body := cells(result.Rows)
	if len(body) > 0 {
		formatter.Table(header, body)
	}
	fmt.Fprintln(formatter.Writer, plural(len(result.Rows), "row"))
	formatter.VerboseLog("trace_id: %s", result.QueryID)
	return nil
}
