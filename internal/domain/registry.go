package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"allmerge.dev/pkg/allmerge/internal/adapter"
	m "allmerge.dev/pkg/allmerge/internal/model"
)

const (
	stageRegistryBaseline  = "registry.baseline"
	stageRegistryOverrides = "registry.overrides"
	stageAttachments       = "registry.attachments"
)

// TestCaseRegistry is the set of test cases that make it into the consolidated
// report, together with the archive of their documents and attachments.
type TestCaseRegistry struct {
	fs       adapter.ReportFSAdapter
	store    adapter.ReportStore
	layout   adapter.Layout
	parallel int
	logger   *slog.Logger

	records   map[string]*m.TestCaseRecord
	byName    map[string][]string
	scanned   map[string][]testCaseDocument
	warnings  []m.Warning
	overrides int
}

// NewTestCaseRegistry creates an empty registry archiving into layout's output.
func NewTestCaseRegistry(
	fs adapter.ReportFSAdapter,
	store adapter.ReportStore,
	layout adapter.Layout,
	parallel int,
	logger *slog.Logger,
) *TestCaseRegistry {
	if logger == nil {
		logger = slog.Default()
	}

	return &TestCaseRegistry{
		fs:       fs,
		store:    store,
		layout:   layout,
		parallel: parallel,
		logger:   logger,
		records:  make(map[string]*m.TestCaseRecord),
		byName:   make(map[string][]string),
		scanned:  make(map[string][]testCaseDocument),
	}
}

// IngestBaseline registers every passed, non-precondition test case of the
// iterations. The first iteration reporting an id wins.
func (r *TestCaseRegistry) IngestBaseline(ctx context.Context, iterations []m.Iteration) error {
	if err := r.scan(ctx, iterations); err != nil {
		return err
	}

	for _, iteration := range iterations {
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, doc := range r.scanned[iteration.RunID] {
			if doc.IsPrecondition() {
				r.logger.Debug("precondition excluded", "run", iteration.RunID, "uid", doc.UID(), "name", doc.Name())
				continue
			}

			if doc.Status() != m.StatusPassed || r.Contains(doc.UID()) {
				continue
			}

			r.insert(doc, doc.raw, m.StatusPassed, iteration.RunID, stageRegistryBaseline)
		}
	}

	r.logger.Info("registry baseline ingested", "iterations", len(iterations), "testCases", len(r.records))

	return nil
}

// IngestOverrides applies the ledger: for each entry the first
// non-precondition document of that run whose name equals the ledger id
// replaces the registered record, carrying the ledger status. Entries without a
// matching document are dropped.
func (r *TestCaseRegistry) IngestOverrides(ctx context.Context, ledger *ExecutionLedger) error {
	for _, runID := range ledger.Runs() {
		if err := ctx.Err(); err != nil {
			return err
		}

		docs, err := r.documents(ctx, runID)
		if err != nil {
			return err
		}

		for _, entry := range ledger.Entries(runID) {
			doc, ok := findDocumentByName(docs, entry.TestCaseID)
			if !ok {
				r.logger.Debug("ledger entry without document", "run", runID, "testCase", entry.TestCaseID)
				continue
			}

			document, err := doc.WithStatus(entry.Status)
			if err != nil {
				r.warn(stageRegistryOverrides, doc.path, err.Error())
				continue
			}

			r.evictNamesakes(doc, runID)
			r.insert(doc, document, entry.Status, runID, stageRegistryOverrides)
			r.overrides++
		}
	}

	r.logger.Info("registry overrides ingested", "overrides", r.overrides, "testCases", len(r.records))

	return nil
}

func findDocumentByName(docs []testCaseDocument, name string) (testCaseDocument, bool) {
	for _, doc := range docs {
		if doc.IsPrecondition() {
			continue
		}

		if doc.Name() == name {
			return doc, true
		}
	}

	return testCaseDocument{}, false
}

// Contains reports whether id is registered.
func (r *TestCaseRegistry) Contains(id string) bool {
	_, ok := r.records[id]
	return ok
}

// Get returns a copy of the record for id.
func (r *TestCaseRegistry) Get(id string) (m.TestCaseRecord, bool) {
	record, ok := r.records[id]
	if !ok {
		return m.TestCaseRecord{}, false
	}

	return *record, true
}

// Len is the number of registered test cases.
func (r *TestCaseRegistry) Len() int {
	return len(r.records)
}

// Records returns every record sorted by id.
func (r *TestCaseRegistry) Records() []m.TestCaseRecord {
	records := make([]m.TestCaseRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, *record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	return records
}

// Overrides is the number of ledger entries that replaced or added a record.
func (r *TestCaseRegistry) Overrides() int {
	return r.overrides
}

// Warnings returns the problems met while ingesting.
func (r *TestCaseRegistry) Warnings() []m.Warning {
	return append([]m.Warning(nil), r.warnings...)
}

func (r *TestCaseRegistry) insert(doc testCaseDocument, document []byte, status m.Status, runID, stage string) {
	uid := doc.UID()

	if _, exists := r.records[uid]; !exists {
		r.byName[doc.Name()] = append(r.byName[doc.Name()], uid)
	}

	r.records[uid] = &m.TestCaseRecord{
		ID:         uid,
		Name:       doc.Name(),
		Status:     status,
		Document:   document,
		TestClass:  doc.TestClass(),
		OriginFile: doc.path,
		RunID:      runID,
	}

	if err := r.store.WriteDocument(r.layout.OutputTestCaseFile(uid), document); err != nil {
		r.warn(stage, r.layout.OutputTestCaseFile(uid), err.Error())
	}

	r.copyAttachments(runID, doc)
}

// evictNamesakes drops records registered from another run that describe the
// same test case as doc under another uid: same name and same test class.
// Distinct cases sharing a name within one run are kept.
func (r *TestCaseRegistry) evictNamesakes(doc testCaseDocument, runID string) {
	uid, name := doc.UID(), doc.Name()
	ids := r.byName[name]
	kept := ids[:0]

	for _, id := range ids {
		record := r.records[id]
		if id == uid || record.RunID == runID || record.TestClass != doc.TestClass() {
			kept = append(kept, id)
			continue
		}

		delete(r.records, id)

		if err := r.fs.Remove(r.layout.OutputTestCaseFile(id)); err != nil {
			r.warn(stageRegistryOverrides, r.layout.OutputTestCaseFile(id), err.Error())
		}

		r.logger.Debug("superseded record evicted", "uid", id, "by", uid, "name", name, "run", record.RunID)
	}

	if len(kept) == 0 {
		delete(r.byName, name)
		return
	}

	r.byName[name] = kept
}

func (r *TestCaseRegistry) copyAttachments(runID string, doc testCaseDocument) {
	for _, attachment := range doc.Attachments() {
		if !adapter.IsPlainName(attachment.Source) {
			r.warn(stageAttachments, doc.path, fmt.Sprintf("attachment source %q is not a plain file name", attachment.Source))
			continue
		}

		src := r.layout.AttachmentFile(runID, attachment.Source)
		dst := r.layout.OutputAttachmentFile(attachment.Source)

		if err := r.fs.CopyFile(src, dst); err != nil {
			r.warn(stageAttachments, src, err.Error())
		}
	}
}

// scan parses the test-case documents of every iteration. Parsing may run in
// parallel; the results are stored per run and folded in iteration order.
func (r *TestCaseRegistry) scan(ctx context.Context, iterations []m.Iteration) error {
	results := make([]scanResult, len(iterations))

	group, groupCtx := errgroup.WithContext(ctx)
	if r.parallel > 0 {
		group.SetLimit(r.parallel)
	}

	for i, iteration := range iterations {
		group.Go(func() error {
			result, err := r.scanIteration(groupCtx, iteration.RunID)
			results[i] = result

			return err
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for i, iteration := range iterations {
		r.scanned[iteration.RunID] = results[i].docs
		r.warnings = append(r.warnings, results[i].warnings...)
	}

	return nil
}

// documents returns the parsed documents of runID, scanning it on first use.
func (r *TestCaseRegistry) documents(ctx context.Context, runID string) ([]testCaseDocument, error) {
	if docs, ok := r.scanned[runID]; ok {
		return docs, nil
	}

	result, err := r.scanIteration(ctx, runID)
	if err != nil {
		return nil, err
	}

	r.scanned[runID] = result.docs
	r.warnings = append(r.warnings, result.warnings...)

	return result.docs, nil
}

type scanResult struct {
	docs     []testCaseDocument
	warnings []m.Warning
}

func (r *TestCaseRegistry) scanIteration(ctx context.Context, runID string) (scanResult, error) {
	var result scanResult

	dir := r.layout.TestCasesDir(runID)

	names, err := r.fs.ListDir(dir)
	if err != nil {
		result.warnings = append(result.warnings, m.Warning{
			Stage:  stageRegistryBaseline,
			Path:   dir,
			Reason: fmt.Sprintf("list test cases: %v", err),
		})
		r.logger.Warn("test cases unreadable", "run", runID, "dir", dir, "error", err)

		return result, nil
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if !strings.HasSuffix(name, ".json") {
			continue
		}

		path := r.fs.JoinPath(string(dir), name)

		doc, err := r.readDocument(path)
		if err != nil {
			result.warnings = append(result.warnings, m.Warning{
				Stage:  stageRegistryBaseline,
				Path:   path,
				Reason: err.Error(),
			})
			r.logger.Warn("test case document skipped", "run", runID, "path", path, "error", err)

			continue
		}

		result.docs = append(result.docs, doc)
	}

	return result, nil
}

func (r *TestCaseRegistry) readDocument(path m.Path) (testCaseDocument, error) {
	raw, err := r.store.ReadDocument(path)
	if err != nil {
		return testCaseDocument{}, err
	}

	return parseTestCaseDocument(raw, path)
}

func (r *TestCaseRegistry) warn(stage string, path m.Path, reason string) {
	r.warnings = append(r.warnings, m.Warning{Stage: stage, Path: path, Reason: reason})
	r.logger.Warn("registry", "stage", stage, "path", path, "reason", reason)
}
