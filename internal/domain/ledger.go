package domain

import (
	"log/slog"
	"sort"

	"allmerge.dev/pkg/allmerge/internal/adapter"
	m "allmerge.dev/pkg/allmerge/internal/model"
)

// ExecutionLedger holds the authoritative final status of every non-passing
// test case, per run. It is immutable once loaded.
type ExecutionLedger struct {
	runs     []string
	statuses map[string]map[string]m.Status
}

// LoadLedger reads every sheet of the ledger at path. Only Failed and Skipped
// entries are retained; passed is the implicit default and any other status is
// dropped. An unreadable ledger yields a *LedgerLoadError, while problems with a
// single sheet only produce warnings.
func LoadLedger(reader adapter.LedgerReader, path m.Path) (*ExecutionLedger, []m.Warning, error) {
	sheets, warnings, err := reader.ReadLedger(path)
	if err != nil {
		return nil, warnings, &LedgerLoadError{Path: path, Err: err}
	}

	return NewExecutionLedger(sheets), warnings, nil
}

// NewExecutionLedger builds a ledger from already parsed sheets. A sheet that
// appears twice is merged, later rows winning.
func NewExecutionLedger(sheets []m.LedgerSheet) *ExecutionLedger {
	ledger := &ExecutionLedger{statuses: make(map[string]map[string]m.Status, len(sheets))}

	for _, sheet := range sheets {
		retained, seen := ledger.statuses[sheet.RunID]
		if !seen {
			retained = make(map[string]m.Status)
			ledger.statuses[sheet.RunID] = retained
			ledger.runs = append(ledger.runs, sheet.RunID)
		}

		for testCaseID, status := range sheet.Statuses {
			if !retainedStatus(status) {
				slog.Debug("ledger entry dropped", "run", sheet.RunID, "testCase", testCaseID, "status", status)
				continue
			}

			retained[testCaseID] = status
		}
	}

	return ledger
}

// EmptyLedger returns a ledger without any override.
func EmptyLedger() *ExecutionLedger {
	return NewExecutionLedger(nil)
}

func retainedStatus(status m.Status) bool {
	return status == m.StatusFailed || status == m.StatusSkipped
}

// Get returns the overrides of runID. Unknown runs yield an empty map.
func (l *ExecutionLedger) Get(runID string) map[string]m.Status {
	statuses, ok := l.statuses[runID]
	if !ok {
		return map[string]m.Status{}
	}

	out := make(map[string]m.Status, len(statuses))
	for id, status := range statuses {
		out[id] = status
	}

	return out
}

// Runs lists run identifiers in sheet order.
func (l *ExecutionLedger) Runs() []string {
	return append([]string(nil), l.runs...)
}

// Entries returns the overrides of runID sorted by test case id.
func (l *ExecutionLedger) Entries(runID string) []m.LedgerEntry {
	statuses := l.statuses[runID]

	entries := make([]m.LedgerEntry, 0, len(statuses))
	for id, status := range statuses {
		entries = append(entries, m.LedgerEntry{RunID: runID, TestCaseID: id, Status: status})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TestCaseID < entries[j].TestCaseID
	})

	return entries
}

// AllEntries returns the entries of every run, runs in sheet order.
func (l *ExecutionLedger) AllEntries() []m.LedgerEntry {
	var entries []m.LedgerEntry
	for _, run := range l.runs {
		entries = append(entries, l.Entries(run)...)
	}

	return entries
}

// Len is the number of retained entries across all runs.
func (l *ExecutionLedger) Len() int {
	total := 0
	for _, statuses := range l.statuses {
		total += len(statuses)
	}

	return total
}
