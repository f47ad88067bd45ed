package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/insight/internal/schema"
)

// FieldInfo describes one queryable field.
type FieldInfo struct {
	Name      string `json:"name"`
	Class     string `json:"class"`
	Attribute string `json:"attribute"`
}

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <kind>",
		Short: "List the queryable fields of a dataset kind",
		Long: `List the logical fields of the courses or rooms schema, their class
(numeric or textual) and the record attribute each one reads.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())

			kind, ok := schema.ParseKind(args[0])
			if !ok {
				return reportError(formatter, NewExitError(ExitCommandError,
					fmt.Sprintf("unknown kind %q: must be one of %v", args[0], schema.Kinds)))
			}

			fields := schema.Fields(kind)
			infos := make([]FieldInfo, len(fields))
			for i, f := range fields {
				infos[i] = FieldInfo{Name: f.Name(), Class: f.Class().String(), Attribute: f.Attribute()}
			}

			if formatter.Format == "json" {
				return formatter.Success(infos)
			}
			body := make([][]string, len(infos))
			for i, info := range infos {
				body[i] = []string{info.Name, info.Class, info.Attribute}
			}
			formatter.Table([]string{"field", "class", "attribute"}, body)
			return nil
		},
	}
}
