package controller

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// SimpleUI implements UI using cobra Command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayIterations prints the discovered iterations.
func (s *SimpleUI) DisplayIterations(ctx context.Context, iterations []m.IterationInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(iterations) == 0 {
		s.printf("No iterations found\n")
		return nil
	}

	s.printf("\n%s", renderIterationsTable(iterations))

	return nil
}

// DisplayLedger prints the ledger overrides.
func (s *SimpleUI) DisplayLedger(ctx context.Context, entries []m.LedgerEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(entries) == 0 {
		s.printf("No ledger overrides\n")
		return nil
	}

	s.printf("\n%s", renderLedgerTable(entries))

	return nil
}

// DisplayResult prints the outcome of a consolidation.
func (s *SimpleUI) DisplayResult(ctx context.Context, result m.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderResult(result))

	return nil
}

// DisplayReport prints the widgets of a consolidated report.
func (s *SimpleUI) DisplayReport(ctx context.Context, view ReportView) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", renderReport(view))

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
