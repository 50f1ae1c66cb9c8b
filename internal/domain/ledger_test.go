package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

type stubLedgerReader struct {
	sheets   []m.LedgerSheet
	warnings []m.Warning
	err      error
}

func (r stubLedgerReader) ReadLedger(m.Path) ([]m.LedgerSheet, []m.Warning, error) {
	return r.sheets, r.warnings, r.err
}

func TestLoadLedger_KeepsOnlyFailedAndSkipped(t *testing.T) {
	reader := stubLedgerReader{sheets: []m.LedgerSheet{
		{RunID: "Run1", Statuses: map[string]m.Status{
			"TC-1": m.StatusFailed,
			"TC-2": m.StatusPassed,
			"TC-3": m.StatusSkipped,
			"TC-4": m.StatusBroken,
			"TC-5": m.StatusUnknown,
		}},
		{RunID: "Run2", Statuses: map[string]m.Status{}},
	}}

	ledger, warnings, err := LoadLedger(reader, "ledger.xlsx")
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, map[string]m.Status{"TC-1": m.StatusFailed, "TC-3": m.StatusSkipped}, ledger.Get("Run1"))
	assert.Empty(t, ledger.Get("Run2"))
	assert.Equal(t, []string{"Run1", "Run2"}, ledger.Runs())
	assert.Equal(t, 2, ledger.Len())
}

func TestLoadLedger_OpenFailure(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")

	_, _, err := LoadLedger(stubLedgerReader{err: cause}, "broken.xlsx")
	require.Error(t, err)

	var loadErr *LedgerLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, m.Path("broken.xlsx"), loadErr.Path)
	assert.ErrorIs(t, err, cause)
}

func TestLoadLedger_PassesSheetWarningsThrough(t *testing.T) {
	reader := stubLedgerReader{
		sheets:   []m.LedgerSheet{{RunID: "Run3", Statuses: map[string]m.Status{}}},
		warnings: []m.Warning{{Stage: "ledger", Reason: `sheet "Run3" has no Status column`}},
	}

	ledger, warnings, err := LoadLedger(reader, "ledger.xlsx")
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Empty(t, ledger.Get("Run3"))
}

func TestExecutionLedger_GetUnknownRunAndIsolation(t *testing.T) {
	ledger := ledgerOf(m.LedgerSheet{RunID: "Run1", Statuses: map[string]m.Status{"TC-1": m.StatusFailed}})

	assert.NotNil(t, ledger.Get("Run9"))
	assert.Empty(t, ledger.Get("Run9"))

	got := ledger.Get("Run1")
	got["TC-1"] = m.StatusSkipped
	assert.Equal(t, m.StatusFailed, ledger.Get("Run1")["TC-1"])
}

func TestExecutionLedger_EntriesSortedAndDuplicateSheetsMerged(t *testing.T) {
	ledger := ledgerOf(
		m.LedgerSheet{RunID: "Run2", Statuses: map[string]m.Status{"TC-9": m.StatusFailed, "TC-1": m.StatusSkipped}},
		m.LedgerSheet{RunID: "Run1", Statuses: map[string]m.Status{"TC-5": m.StatusFailed}},
		m.LedgerSheet{RunID: "Run2", Statuses: map[string]m.Status{"TC-9": m.StatusSkipped}},
	)

	assert.Equal(t, []string{"Run2", "Run1"}, ledger.Runs())
	assert.Equal(t, []m.LedgerEntry{
		{RunID: "Run2", TestCaseID: "TC-1", Status: m.StatusSkipped},
		{RunID: "Run2", TestCaseID: "TC-9", Status: m.StatusSkipped},
	}, ledger.Entries("Run2"))
	assert.Len(t, ledger.AllEntries(), 3)
	assert.Equal(t, "Run1", ledger.AllEntries()[2].RunID)
}

func TestEmptyLedger(t *testing.T) {
	ledger := EmptyLedger()

	assert.Zero(t, ledger.Len())
	assert.Empty(t, ledger.Runs())
	assert.Empty(t, ledger.AllEntries())
}
