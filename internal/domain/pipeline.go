package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"allmerge.dev/pkg/allmerge/internal/adapter"
	m "allmerge.dev/pkg/allmerge/internal/model"
)

// DefaultReportName is used when no report name is configured.
const DefaultReportName = "Consolidated Report"

// PipelineConfig describes one consolidation.
type PipelineConfig struct {
	Layout adapter.Layout
	// Ledger is the execution ledger. Empty means no overrides.
	Ledger m.Path
	// Iterations fixes the run count (Run1..RunN); 0 discovers the runs.
	Iterations int
	Parallel   int
	Counting   CountingMode
	ReportName string
}

// ConsolidationRun owns every piece of state of one consolidation. A run is
// built fresh for each invocation and never reused.
type ConsolidationRun struct {
	ID        string
	StartedAt time.Time
	Config    PipelineConfig
	Logger    *slog.Logger

	Iterations  []m.Iteration
	Ledger      *ExecutionLedger
	Registry    *TestCaseRegistry
	Mergers     []*TaxonomyMerger
	Tally       *PreconditionTally
	Aggregators map[string]*StatisticAggregator

	warnings []m.Warning
}

func (r *ConsolidationRun) warn(warnings ...m.Warning) {
	r.warnings = append(r.warnings, warnings...)
}

// Merger returns the merger of taxonomy name.
func (r *ConsolidationRun) Merger(name m.TaxonomyName) *TaxonomyMerger {
	for _, merger := range r.Mergers {
		if merger.Definition().Name == name {
			return merger
		}
	}

	return nil
}

// Pipeline runs consolidations in their fixed order: ledger, registry
// baseline, registry overrides, taxonomies, widgets.
type Pipeline struct {
	fs      adapter.ReportFSAdapter
	store   adapter.ReportStore
	ledgers adapter.LedgerReader
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewPipeline creates a Pipeline.
func NewPipeline(fs adapter.ReportFSAdapter, store adapter.ReportStore, ledgers adapter.LedgerReader) *Pipeline {
	return &Pipeline{
		fs:      fs,
		store:   store,
		ledgers: ledgers,
		logger:  slog.Default(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// NewRun creates the state of a fresh consolidation.
func (p *Pipeline) NewRun(cfg PipelineConfig) *ConsolidationRun {
	if cfg.Counting == "" {
		cfg.Counting = AdditiveCounting
	}

	if strings.TrimSpace(cfg.ReportName) == "" {
		cfg.ReportName = DefaultReportName
	}

	id := p.newID()
	logger := p.logger.With("run", id)

	run := &ConsolidationRun{
		ID:        id,
		StartedAt: p.now(),
		Config:    cfg,
		Logger:    logger,
		Tally:     &PreconditionTally{},
	}

	run.Registry = NewTestCaseRegistry(p.fs, p.store, cfg.Layout, cfg.Parallel, logger)

	for _, def := range Definitions() {
		run.Mergers = append(run.Mergers, NewTaxonomyMerger(def, p.store, cfg.Layout, GateFor(def, run.Registry), logger))
	}

	run.Aggregators = map[string]*StatisticAggregator{
		WidgetBehaviors:  NewStatisticAggregator(WidgetBehaviors, RecordPreconditionPasses{Tally: run.Tally}, cfg.Counting),
		WidgetCategories: NewStatisticAggregator(WidgetCategories, DropPreconditions{}, cfg.Counting),
		WidgetSuites:     NewStatisticAggregator(WidgetSuites, DropPreconditions{}, cfg.Counting),
	}

	return run
}

// Run consolidates the iterations described by cfg.
func (p *Pipeline) Run(ctx context.Context, cfg PipelineConfig) (m.Result, error) {
	return p.Execute(ctx, p.NewRun(cfg))
}

// Execute drives run through every stage. Recoverable problems become
// warnings of the returned Result; only a missing input, an unreadable ledger,
// zero iterations or cancellation abort the run.
func (p *Pipeline) Execute(ctx context.Context, run *ConsolidationRun) (m.Result, error) {
	layout := run.Config.Layout
	run.Logger.Info("consolidation started", "input", layout.InputRoot, "output", layout.OutputRoot)

	if err := p.loadLedger(run); err != nil {
		return m.Result{}, err
	}

	if err := p.resolveIterations(run); err != nil {
		return m.Result{}, err
	}

	p.prepareOutput(run)

	if err := run.Registry.IngestBaseline(ctx, run.Iterations); err != nil {
		return m.Result{}, fmt.Errorf("registry baseline: %w", err)
	}

	if err := run.Registry.IngestOverrides(ctx, run.Ledger); err != nil {
		return m.Result{}, fmt.Errorf("registry overrides: %w", err)
	}

	run.warn(run.Registry.Warnings()...)

	if err := p.mergeTaxonomies(ctx, run); err != nil {
		return m.Result{}, err
	}

	widgets, summary := p.writeWidgets(run)
	p.copyWidgets(run)
	p.writeFlatData(run)

	result := p.result(run, widgets, summary)

	if err := p.store.WriteJSON(layout.ManifestFile(), result); err != nil {
		result.Warnings = append(result.Warnings, m.Warning{Stage: "manifest", Path: layout.ManifestFile(), Reason: err.Error()})
	}

	run.Logger.Info("consolidation finished",
		"testCases", result.TestCases,
		"overrides", result.Overrides,
		"warnings", len(result.Warnings),
	)

	return result, nil
}

func (p *Pipeline) loadLedger(run *ConsolidationRun) error {
	if run.Config.Ledger == "" {
		run.Ledger = EmptyLedger()
		run.Logger.Info("no execution ledger configured")

		return nil
	}

	ledger, warnings, err := LoadLedger(p.ledgers, run.Config.Ledger)
	run.warn(warnings...)

	if err != nil {
		return err
	}

	run.Ledger = ledger
	run.Logger.Info("execution ledger loaded", "path", run.Config.Ledger, "runs", len(ledger.Runs()), "entries", ledger.Len())

	return nil
}

func (p *Pipeline) resolveIterations(run *ConsolidationRun) error {
	layout := run.Config.Layout

	if _, err := p.fs.FileInfo(layout.InputRoot); err != nil {
		return fmt.Errorf("input root %s: %w", layout.InputRoot, err)
	}

	if run.Config.Iterations > 0 {
		run.Iterations = layout.Iterations(run.Config.Iterations)
	} else {
		iterations, err := adapter.DiscoverIterations(p.fs, layout)
		if err != nil {
			return err
		}

		run.Iterations = iterations
	}

	if len(run.Iterations) == 0 {
		return fmt.Errorf("%w under %s", ErrNoIterations, layout.InputRoot)
	}

	return nil
}

// prepareOutput clears the previous consolidated report and copies the viewer
// shell of the newest iteration.
func (p *Pipeline) prepareOutput(run *ConsolidationRun) {
	layout := run.Config.Layout

	if err := p.fs.RemoveAll(layout.ConsolidatedDir()); err != nil {
		run.warn(m.Warning{Stage: "output", Path: layout.ConsolidatedDir(), Reason: err.Error()})
	}

	newest := run.Iterations[len(run.Iterations)-1]
	shell := layout.IterationDir(newest.RunID)

	if err := p.fs.CopyDir(shell, layout.ReportDir(), layout.ShellSkips()...); err != nil {
		run.warn(m.Warning{Stage: "output.shell", Path: shell, Reason: err.Error()})
		run.Logger.Warn("viewer shell not copied", "path", shell, "error", err)
	}
}

// mergeTaxonomies merges every taxonomy, possibly in parallel, then writes the
// trees in definition order.
func (p *Pipeline) mergeTaxonomies(ctx context.Context, run *ConsolidationRun) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if run.Config.Parallel > 0 {
		group.SetLimit(run.Config.Parallel)
	}

	for _, merger := range run.Mergers {
		group.Go(func() error {
			if err := merger.MergeBaseline(groupCtx, run.Iterations); err != nil {
				return fmt.Errorf("%s baseline: %w", merger.Definition().Name, err)
			}

			if err := merger.MergeOverrides(groupCtx, run.Ledger); err != nil {
				return fmt.Errorf("%s overrides: %w", merger.Definition().Name, err)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for _, merger := range run.Mergers {
		run.warn(merger.Warnings()...)

		name := merger.Definition().Name
		path := run.Config.Layout.OutputTaxonomyFile(name)

		if err := p.store.WriteJSON(path, merger.Tree()); err != nil {
			run.warn(m.Warning{Stage: "taxonomy." + string(name), Path: path, Reason: err.Error()})
			continue
		}

		run.Logger.Info("taxonomy merged", "taxonomy", name, "leaves", merger.LeafCount(), "groups", len(merger.Groups()))
	}

	return nil
}

func (p *Pipeline) writeWidgets(run *ConsolidationRun) (map[string]m.Widget, m.SummaryWidget) {
	widgets := make(map[string]m.Widget, len(RebuiltWidgets))

	widgets[WidgetBehaviors] = ExtractTaxonomyWidget(
		run.Aggregators[WidgetBehaviors],
		run.Merger(m.TaxonomyBehaviors).Admissions(),
		nil,
	)

	widgets[WidgetCategories] = ExtractTaxonomyWidget(
		run.Aggregators[WidgetCategories],
		run.Merger(m.TaxonomyCategories).Admissions(),
		func() {
			run.warn(ApplyPreconditionAdjustment(run.Aggregators[WidgetCategories], run.Tally)...)
		},
	)

	widgets[WidgetSuites] = ExtractTaxonomyWidget(
		run.Aggregators[WidgetSuites],
		run.Merger(m.TaxonomySuites).Admissions(),
		nil,
	)

	summary := BuildSummary(run.Config.ReportName, runIDs(run.Iterations), run.Registry.Records(), run.Config.Counting)

	for _, name := range RebuiltWidgets {
		var value any = widgets[name]
		if name == WidgetSummary {
			value = summary
		}

		path := run.Config.Layout.OutputWidgetFile(name)
		if err := p.store.WriteJSON(path, value); err != nil {
			run.warn(m.Warning{Stage: "widgets." + name, Path: path, Reason: err.Error()})
		}
	}

	return widgets, summary
}

// copyWidgets copies every widget that is not rebuilt from the newest
// iteration that has it.
func (p *Pipeline) copyWidgets(run *ConsolidationRun) {
	layout := run.Config.Layout

	done := make(map[string]bool, len(RebuiltWidgets))
	for _, name := range RebuiltWidgets {
		done[name] = true
	}

	for i := len(run.Iterations) - 1; i >= 0; i-- {
		dir := layout.WidgetsDir(run.Iterations[i].RunID)

		names, err := p.fs.ListDir(dir)
		if err != nil {
			continue
		}

		for _, file := range names {
			name, ok := strings.CutSuffix(file, ".json")
			if !ok || done[name] {
				continue
			}

			done[name] = true

			src := p.fs.JoinPath(string(dir), file)
			if err := p.fs.CopyFile(src, layout.OutputWidgetFile(name)); err != nil {
				run.warn(m.Warning{Stage: "widgets.copy", Path: src, Reason: err.Error()})
			}
		}
	}
}

func (p *Pipeline) writeFlatData(run *ConsolidationRun) {
	data := BuildFlatData(run.Registry.Records())

	files := []struct {
		name    string
		entries []m.FlatEntry
	}{
		{DataDuration, data.Duration},
		{DataSeverity, data.Severity},
		{DataStatusChart, data.StatusChart},
	}

	for _, file := range files {
		path := run.Config.Layout.OutputDataFile(file.name)
		if err := p.store.WriteJSON(path, file.entries); err != nil {
			run.warn(m.Warning{Stage: "data." + file.name, Path: path, Reason: err.Error()})
		}
	}
}

func (p *Pipeline) result(run *ConsolidationRun, widgets map[string]m.Widget, summary m.SummaryWidget) m.Result {
	leaves := make(map[m.TaxonomyName]int, len(run.Mergers))
	for _, merger := range run.Mergers {
		leaves[merger.Definition().Name] = merger.LeafCount()
	}

	warnings := run.warnings
	if warnings == nil {
		warnings = []m.Warning{}
	}

	return m.Result{
		RunID:      run.ID,
		StartedAt:  run.StartedAt,
		FinishedAt: p.now(),
		Iterations: runIDs(run.Iterations),
		Output:     run.Config.Layout.ReportDir(),
		TestCases:  run.Registry.Len(),
		Overrides:  run.Registry.Overrides(),
		Leaves:     leaves,
		Widgets:    widgets,
		Summary:    summary.Statistic,
		Warnings:   warnings,
	}
}

func runIDs(iterations []m.Iteration) []string {
	ids := make([]string, 0, len(iterations))
	for _, iteration := range iterations {
		ids = append(ids, iteration.RunID)
	}

	return ids
}
