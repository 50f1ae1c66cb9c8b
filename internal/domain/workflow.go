package domain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"allmerge.dev/pkg/allmerge/internal/adapter"
	"allmerge.dev/pkg/allmerge/internal/controller"
	m "allmerge.dev/pkg/allmerge/internal/model"
)

// MergeArgs contains the arguments of a consolidation.
type MergeArgs struct {
	Input      m.Path
	Output     m.Path
	Ledger     m.Path
	Iterations int
	Plugin     string
	RunPrefix  string
	Parallel   int
	Counting   CountingMode
	ReportName string
	Strict     bool
	Archive    bool
}

// ListArgs selects the iterations to describe.
type ListArgs struct {
	Input      m.Path
	Iterations int
	Plugin     string
	RunPrefix  string
}

// LedgerArgs selects the ledger overrides to show.
type LedgerArgs struct {
	Ledger m.Path
	// Run restricts the output to one run; empty shows every run.
	Run string
}

// ViewArgs locates a consolidated report.
type ViewArgs struct {
	Output m.Path
}

// Workflow defines the operations behind the CLI commands.
type Workflow interface {
	Merge(ctx context.Context, args MergeArgs) error
	List(ctx context.Context, args ListArgs) error
	Ledger(ctx context.Context, args LedgerArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.ReportFSAdapter
	adapter.ReportStore
	adapter.LedgerReader
	adapter.Archiver
	controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.ReportFSAdapter,
	reportStore adapter.ReportStore,
	ledgerReader adapter.LedgerReader,
	archiver adapter.Archiver,
	ui controller.UI,
) Workflow {
	return &workflow{
		ReportFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		LedgerReader:    ledgerReader,
		Archiver:        archiver,
		UI:              ui,
	}
}

func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	layout := adapter.NewLayout(args.Input, args.Output, args.Plugin, args.RunPrefix)

	pipeline := NewPipeline(w.ReportFSAdapter, w.ReportStore, w.LedgerReader)

	result, err := pipeline.Run(ctx, PipelineConfig{
		Layout:     layout,
		Ledger:     args.Ledger,
		Iterations: args.Iterations,
		Parallel:   args.Parallel,
		Counting:   args.Counting,
		ReportName: args.ReportName,
	})
	if err != nil {
		return fmt.Errorf("consolidate: %w", err)
	}

	if args.Archive {
		dst := m.Path(string(layout.ConsolidatedDir()) + adapter.ArchiveExt)

		if err := w.Archive(ctx, layout.ConsolidatedDir(), dst); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			result.Warnings = append(result.Warnings, m.Warning{Stage: "archive", Path: dst, Reason: err.Error()})
			slog.Warn("archive failed", "path", dst, "error", err)
		} else {
			result.Archive = dst
		}
	}

	if err := w.DisplayResult(ctx, result); err != nil {
		return fmt.Errorf("display result: %w", err)
	}

	if args.Strict && !result.Complete() {
		return fmt.Errorf("%w: %d warning(s)", ErrIncompleteConsolidation, len(result.Warnings))
	}

	return nil
}

func (w *workflow) List(ctx context.Context, args ListArgs) error {
	layout := adapter.NewLayout(args.Input, "", args.Plugin, args.RunPrefix)

	var iterations []m.Iteration

	if args.Iterations > 0 {
		iterations = layout.Iterations(args.Iterations)
	} else {
		discovered, err := adapter.DiscoverIterations(w.ReportFSAdapter, layout)
		if err != nil {
			return err
		}

		iterations = discovered
	}

	infos := make([]m.IterationInfo, 0, len(iterations))
	for _, iteration := range iterations {
		infos = append(infos, adapter.DescribeIteration(w.ReportFSAdapter, layout, iteration))
	}

	return w.DisplayIterations(ctx, infos)
}

func (w *workflow) Ledger(ctx context.Context, args LedgerArgs) error {
	if args.Ledger == "" {
		return errors.New("no execution ledger configured")
	}

	ledger, warnings, err := LoadLedger(w.LedgerReader, args.Ledger)
	if err != nil {
		return err
	}

	for _, warning := range warnings {
		slog.Warn("ledger", "path", warning.Path, "reason", warning.Reason)
	}

	entries := ledger.AllEntries()
	if args.Run != "" {
		entries = ledger.Entries(args.Run)
	}

	return w.DisplayLedger(ctx, entries)
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	layout := adapter.NewLayout("", args.Output, "", "")

	view := controller.ReportView{Report: layout.ReportDir()}

	if err := w.ReadJSON(layout.OutputWidgetFile(WidgetSummary), &view.Summary); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no consolidated report under %s", args.Output)
		}

		return fmt.Errorf("read summary: %w", err)
	}

	for _, name := range RebuiltWidgets {
		if name == WidgetSummary {
			continue
		}

		widget, err := w.ReadWidget(layout.OutputWidgetFile(name))
		if err != nil {
			slog.Debug("widget not shown", "widget", name, "error", err)
			continue
		}

		view.Widgets = append(view.Widgets, controller.NamedWidget{Name: name, Widget: widget})
	}

	var manifest m.Result
	if err := w.ReadJSON(layout.ManifestFile(), &manifest); err == nil {
		view.Manifest = &manifest
	}

	return w.DisplayReport(ctx, view)
}
