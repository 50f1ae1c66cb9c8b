// Package cmd provides the root command and CLI setup for allmerge.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"allmerge.dev/pkg/allmerge/internal/adapter"
	"allmerge.dev/pkg/allmerge/internal/controller"
	"allmerge.dev/pkg/allmerge/internal/domain"
	m "allmerge.dev/pkg/allmerge/internal/model"
)

var fsAdapter adapter.ReportFSAdapter
var reportStore adapter.ReportStore
var ledgerReader adapter.LedgerReader
var archiver adapter.Archiver
var workflow domain.Workflow
var ui controller.UI

// Root-level flags shared by the commands that locate reports.
var (
	inputDirFlag   string
	outputDirFlag  string
	ledgerPathFlag string
	iterationsFlag int
	pluginFlag     string
	runPrefixFlag  string
	verboseFlag    bool
	logFileFlag    string
)

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalReportFSAdapter()
	reportStore = adapter.NewJSONReportStore(fsAdapter)
	ledgerReader = adapter.NewFormatLedgerReader(fsAdapter)
	archiver = adapter.NewZstdArchiver()
	workflow = domain.NewWorkflow(
		fsAdapter,
		reportStore,
		ledgerReader,
		archiver,
		ui,
	)
}

const layoutHelp = `Iterations are read from <input>/<prefix><k>/site/<plugin>, for example
  Run1/site/allure-maven-plugin. The consolidated report is written to
  <output>/ConsolidatedReport/allure-report.`

const rootLongDescription = `Allmerge consolidates the Allure reports of several test iterations into a
single report. Test cases that passed in any iteration are kept, statuses
recorded in an execution ledger override them, and the taxonomy trees and
widgets are rebuilt from the merged data.

` + layoutHelp

const mergeLongDescription = `Consolidate every iteration into one report.

Recoverable problems (a missing taxonomy file, an unreadable test case) are
reported as warnings and written to consolidation.json; use --strict to turn
them into a failing exit status.

` + layoutHelp

const listLongDescription = `List the iterations found under the input directory together with the
taxonomy files and test cases each one exports.

` + layoutHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allmerge",
		Short: "Consolidate multi-iteration Allure reports",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringVarP(&inputDirFlag, inputFlagName, "i", viper.GetString(inputFlagName), "directory holding the iteration reports")
	bindFlagToConfig(flags.Lookup(inputFlagName), inputFlagName)

	flags.StringVarP(&outputDirFlag, outputFlagName, "o", viper.GetString(outputFlagName), "directory receiving the consolidated report")
	bindFlagToConfig(flags.Lookup(outputFlagName), outputFlagName)

	flags.StringVarP(&ledgerPathFlag, ledgerFlagName, "l", viper.GetString(ledgerFlagName), "execution ledger (.xlsx or .yaml) with per-run overrides")
	bindFlagToConfig(flags.Lookup(ledgerFlagName), ledgerFlagName)

	flags.IntVarP(&iterationsFlag, iterationsFlagName, "n", viper.GetInt(iterationsFlagName), "number of iterations (0 discovers them)")
	bindFlagToConfig(flags.Lookup(iterationsFlagName), iterationsFlagName)

	flags.StringVar(&pluginFlag, pluginFlagName, viper.GetString(pluginConfigKey), "report plugin directory below site/")
	bindFlagToConfig(flags.Lookup(pluginFlagName), pluginConfigKey)

	flags.StringVar(&runPrefixFlag, runPrefixFlagName, viper.GetString(runPrefixConfigKey), "prefix of the iteration directories")
	bindFlagToConfig(flags.Lookup(runPrefixFlagName), runPrefixConfigKey)

	flags.BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func configuredPath(key string) m.Path {
	return m.Path(viper.GetString(key))
}
