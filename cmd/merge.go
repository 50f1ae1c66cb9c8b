package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"allmerge.dev/pkg/allmerge/internal/domain"
)

var mergeParallelFlag int
var mergeCountingFlag string
var mergeStrictFlag bool
var mergeArchiveFlag bool
var mergeReportNameFlag string

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Consolidate iteration reports into a single report",
		Long:  mergeLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			counting, err := domain.ParseCountingMode(viper.GetString(countingConfigKey))
			if err != nil {
				return err
			}

			return workflow.Merge(cmd.Context(), domain.MergeArgs{
				Input:      configuredPath(inputFlagName),
				Output:     configuredPath(outputFlagName),
				Ledger:     configuredPath(ledgerFlagName),
				Iterations: viper.GetInt(iterationsFlagName),
				Plugin:     viper.GetString(pluginConfigKey),
				RunPrefix:  viper.GetString(runPrefixConfigKey),
				Parallel:   viper.GetInt(runParallelConfigKey),
				Counting:   counting,
				ReportName: viper.GetString(reportNameConfigKey),
				Strict:     viper.GetBool(strictConfigKey),
				Archive:    viper.GetBool(archiveConfigKey),
			})
		},
	}

	configureMergeFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}

func configureMergeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&mergeParallelFlag, runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of iterations scanned and taxonomies merged in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().StringVar(&mergeCountingFlag, countingFlagName, viper.GetString(countingConfigKey), "widget counting for overridden test cases: additive or net")
	bindFlagToConfig(cmd.Flags().Lookup(countingFlagName), countingConfigKey)

	cmd.Flags().BoolVar(&mergeStrictFlag, strictFlagName, viper.GetBool(strictConfigKey), "fail when the consolidation produced warnings")
	bindFlagToConfig(cmd.Flags().Lookup(strictFlagName), strictConfigKey)

	cmd.Flags().BoolVar(&mergeArchiveFlag, archiveFlagName, viper.GetBool(archiveConfigKey), "also write the consolidated report as a .tar.zst archive")
	bindFlagToConfig(cmd.Flags().Lookup(archiveFlagName), archiveConfigKey)

	cmd.Flags().StringVar(&mergeReportNameFlag, reportNameFlagName, viper.GetString(reportNameConfigKey), "report name shown in the summary widget")
	bindFlagToConfig(cmd.Flags().Lookup(reportNameFlagName), reportNameConfigKey)
}
