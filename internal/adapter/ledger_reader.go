package adapter

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// Ledger column headers. Header matching ignores case and whitespace, so
// "TestCaseID" and "Test Case ID" both resolve.
const (
	LedgerTestCaseColumn = "Test Case ID"
	LedgerStatusColumn   = "Status"

	ledgerStage = "ledger"
)

// LedgerReader reads an execution ledger: one sheet per run, mapping test case
// identifiers to their recorded status. Readers return every parseable status;
// filtering is the domain's job.
type LedgerReader interface {
	ReadLedger(path m.Path) ([]m.LedgerSheet, []m.Warning, error)
}

// FormatLedgerReader dispatches on the file extension.
type FormatLedgerReader struct {
	Excel LedgerReader
	YAML  LedgerReader
}

// NewFormatLedgerReader returns a reader that understands .xlsx and .yaml ledgers.
func NewFormatLedgerReader(fs ReportFSAdapter) *FormatLedgerReader {
	return &FormatLedgerReader{
		Excel: NewExcelLedgerReader(),
		YAML:  NewYAMLLedgerReader(fs),
	}
}

// ReadLedger implements LedgerReader.
func (r *FormatLedgerReader) ReadLedger(path m.Path) ([]m.LedgerSheet, []m.Warning, error) {
	switch strings.ToLower(filepath.Ext(string(path))) {
	case ".xlsx", ".xlsm":
		return r.Excel.ReadLedger(path)
	case ".yaml", ".yml":
		return r.YAML.ReadLedger(path)
	default:
		return nil, nil, fmt.Errorf("unsupported ledger format %q", filepath.Ext(string(path)))
	}
}

// ExcelLedgerReader reads .xlsx workbooks.
type ExcelLedgerReader struct{}

// NewExcelLedgerReader creates an ExcelLedgerReader.
func NewExcelLedgerReader() *ExcelLedgerReader {
	return &ExcelLedgerReader{}
}

// ReadLedger implements LedgerReader.
func (r *ExcelLedgerReader) ReadLedger(path m.Path) ([]m.LedgerSheet, []m.Warning, error) {
	workbook, err := excelize.OpenFile(string(path))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook %s: %w", path, err)
	}

	defer func() {
		if err := workbook.Close(); err != nil {
			slog.Warn("failed to close workbook", "path", path, "error", err)
		}
	}()

	var (
		sheets   []m.LedgerSheet
		warnings []m.Warning
	)

	for _, name := range workbook.GetSheetList() {
		sheet := m.LedgerSheet{RunID: name, Statuses: map[string]m.Status{}}

		rows, err := workbook.GetRows(name)
		if err != nil {
			warnings = append(warnings, m.Warning{
				Stage:  ledgerStage,
				Path:   path,
				Reason: fmt.Sprintf("sheet %s unreadable: %v", name, err),
			})
			sheets = append(sheets, sheet)

			continue
		}

		sheet.Statuses, warnings = parseLedgerRows(path, name, rows, warnings)
		sheets = append(sheets, sheet)
	}

	return sheets, warnings, nil
}

// parseLedgerRows locates the header row and reads every data row below it.
// A sheet without the required columns yields an empty map and a warning.
func parseLedgerRows(path m.Path, sheet string, rows [][]string, warnings []m.Warning) (map[string]m.Status, []m.Warning) {
	statuses := map[string]m.Status{}

	headerRow, idColumn, statusColumn := findLedgerHeader(rows)
	if headerRow < 0 {
		warnings = append(warnings, m.Warning{
			Stage:  ledgerStage,
			Path:   path,
			Reason: fmt.Sprintf("sheet %s has no %q/%q header", sheet, LedgerTestCaseColumn, LedgerStatusColumn),
		})

		return statuses, warnings
	}

	for _, row := range rows[headerRow+1:] {
		if idColumn >= len(row) || statusColumn >= len(row) {
			continue
		}

		id := strings.TrimSpace(row[idColumn])
		if id == "" {
			continue
		}

		status, ok := m.ParseStatus(row[statusColumn])
		if !ok {
			slog.Debug("ledger row with unknown status", "sheet", sheet, "testCase", id, "status", row[statusColumn])
			continue
		}

		statuses[id] = status
	}

	return statuses, warnings
}

func findLedgerHeader(rows [][]string) (row, idColumn, statusColumn int) {
	wantID := normalizeHeader(LedgerTestCaseColumn)
	wantStatus := normalizeHeader(LedgerStatusColumn)

	for i, cells := range rows {
		idColumn, statusColumn = -1, -1

		for j, cell := range cells {
			switch normalizeHeader(cell) {
			case wantID:
				idColumn = j
			case wantStatus:
				statusColumn = j
			}
		}

		if idColumn >= 0 && statusColumn >= 0 {
			return i, idColumn, statusColumn
		}
	}

	return -1, -1, -1
}

func normalizeHeader(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), ""))
}

// YAMLLedgerReader reads ledgers kept as YAML:
//
//	runs:
//	  - run: Run1
//	    results:
//	      TC-001: Failed
type YAMLLedgerReader struct {
	fs ReportFSAdapter
}

// NewYAMLLedgerReader creates a YAMLLedgerReader.
func NewYAMLLedgerReader(fs ReportFSAdapter) *YAMLLedgerReader {
	return &YAMLLedgerReader{fs: fs}
}

type yamlLedger struct {
	Runs []yamlLedgerRun `yaml:"runs"`
}

type yamlLedgerRun struct {
	Run     string            `yaml:"run"`
	Results map[string]string `yaml:"results"`
}

// ReadLedger implements LedgerReader.
func (r *YAMLLedgerReader) ReadLedger(path m.Path) ([]m.LedgerSheet, []m.Warning, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	var ledger yamlLedger
	if err := yaml.Unmarshal(data, &ledger); err != nil {
		return nil, nil, fmt.Errorf("decode ledger %s: %w", path, err)
	}

	var warnings []m.Warning

	sheets := make([]m.LedgerSheet, 0, len(ledger.Runs))

	for _, run := range ledger.Runs {
		if strings.TrimSpace(run.Run) == "" {
			warnings = append(warnings, m.Warning{Stage: ledgerStage, Path: path, Reason: "run entry without a name"})
			continue
		}

		sheet := m.LedgerSheet{RunID: run.Run, Statuses: make(map[string]m.Status, len(run.Results))}

		for id, raw := range run.Results {
			status, ok := m.ParseStatus(raw)
			if !ok {
				slog.Debug("ledger entry with unknown status", "run", run.Run, "testCase", id, "status", raw)
				continue
			}

			sheet.Statuses[strings.TrimSpace(id)] = status
		}

		sheets = append(sheets, sheet)
	}

	return sheets, warnings, nil
}
