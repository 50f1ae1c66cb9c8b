package cmd

import (
	"github.com/spf13/cobra"

	"allmerge.dev/pkg/allmerge/internal/domain"
)

var ledgerRunFlag string

// ledgerCmd represents the ledger command.
var ledgerCmd = newLedgerCmd()

func newLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show the failed and skipped overrides of the execution ledger",
		Long: `Read the execution ledger given with --ledger and print the overrides it
applies: every test case recorded as failed or skipped, grouped by run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Ledger(cmd.Context(), domain.LedgerArgs{
				Ledger: configuredPath(ledgerFlagName),
				Run:    ledgerRunFlag,
			})
		},
	}

	cmd.Flags().StringVarP(&ledgerRunFlag, "run", "r", "", "only show the overrides of this run (e.g. Run2)")

	return cmd
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
}
