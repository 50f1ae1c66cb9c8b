package cmd

import (
	"github.com/spf13/cobra"

	"allmerge.dev/pkg/allmerge/internal/domain"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View a consolidated report",
		Long:  "View the summary, widgets and warnings of a consolidated report below the output directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{Output: configuredPath(outputFlagName)})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
