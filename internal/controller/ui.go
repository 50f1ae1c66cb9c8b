// Package controller renders consolidation results on the terminal.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// ReportView is what the view command shows of a consolidated report.
type ReportView struct {
	Report   m.Path
	Summary  m.SummaryWidget
	Widgets  []NamedWidget
	Manifest *m.Result
}

// NamedWidget pairs a widget with its file name.
type NamedWidget struct {
	Name   string
	Widget m.Widget
}

// UI defines how command results are displayed.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	DisplayIterations(ctx context.Context, iterations []m.IterationInfo) error
	DisplayLedger(ctx context.Context, entries []m.LedgerEntry) error
	DisplayResult(ctx context.Context, result m.Result) error
	DisplayReport(ctx context.Context, view ReportView) error
}

// NewUI returns the TUI when output goes to a terminal and the SimpleUI
// otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
