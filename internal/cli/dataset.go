package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/insight/internal/catalog"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/schema"
)

// NewDatasetCommand creates the dataset command group.
func NewDatasetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Manage datasets stored in the database",
		Long: `Add, list and remove datasets in the SQLite database selected with --db.

Stored datasets are visible to every later query run against the same
database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newDatasetAddCommand(rootOpts))
	cmd.AddCommand(newDatasetListCommand(rootOpts))
	cmd.AddCommand(newDatasetRemoveCommand(rootOpts))

	return cmd
}

// DatasetAddResult is the payload of a successful dataset add.
type DatasetAddResult struct {
	Added ir.DatasetInfo `json:"added"`
	IDs   []string       `json:"ids"`
}

func newDatasetAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <kind> <records-file>",
		Short: "Store a dataset",
		Long: `Store the records of a JSON or YAML file as a dataset of the given kind
(courses or rooms). Dataset IDs may not be blank or contain an underscore.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			kind, ok := schema.ParseKind(args[1])
			if !ok {
				return reportError(formatter, &catalog.Error{
					Code:    catalog.ErrCodeInvalidKind,
					ID:      args[0],
					Message: fmt.Sprintf("unsupported kind %q", args[1]),
				})
			}
			records, err := LoadRecords(args[2])
			if err != nil {
				return reportError(formatter, err)
			}

			cat, st, err := openPersistentCatalog(cmd.Context(), rootOpts)
			if err != nil {
				return reportError(formatter, err)
			}
			defer st.Close()

			ds := &ir.Dataset{ID: args[0], Kind: kind, Records: records}
			ids, err := cat.Add(cmd.Context(), ds)
			if err != nil {
				return reportError(formatter, err)
			}

			if formatter.Format == "json" {
				return formatter.Success(DatasetAddResult{Added: ds.Info(), IDs: ids})
			}
			fmt.Fprintf(formatter.Writer, "✓ Added %s (%s, %s)\n", ds.ID, ds.Kind, plural(len(records), "row"))
			return nil
		},
	}
}

func newDatasetListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored datasets",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			cat, st, err := openPersistentCatalog(cmd.Context(), rootOpts)
			if err != nil {
				return reportError(formatter, err)
			}
			defer st.Close()

			infos := cat.List()
			if formatter.Format == "json" {
				return formatter.Success(infos)
			}

			if len(infos) == 0 {
				fmt.Fprintln(formatter.Writer, "No datasets")
				return nil
			}
			body := make([][]string, len(infos))
			for i, info := range infos {
				body[i] = []string{info.ID, string(info.Kind), strconv.Itoa(info.NumRows)}
			}
			formatter.Table([]string{"id", "kind", "numRows"}, body)
			return nil
		},
	}
}

func newDatasetRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <id>",
		Short:         "Remove a stored dataset",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			cat, st, err := openPersistentCatalog(cmd.Context(), rootOpts)
			if err != nil {
				return reportError(formatter, err)
			}
			defer st.Close()

			id, err := cat.Remove(cmd.Context(), args[0])
			if err != nil {
				return reportError(formatter, err)
			}

			if formatter.Format == "json" {
				return formatter.Success(map[string]string{"removed": id})
			}
			fmt.Fprintf(formatter.Writer, "✓ Removed %s\n", id)
			return nil
		},
	}
}
