package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"allmerge.dev/pkg/allmerge/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List iterations and the exports they provide",
		Long:  listLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.List(cmd.Context(), domain.ListArgs{
				Input:      configuredPath(inputFlagName),
				Iterations: viper.GetInt(iterationsFlagName),
				Plugin:     viper.GetString(pluginConfigKey),
				RunPrefix:  viper.GetString(runPrefixConfigKey),
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
