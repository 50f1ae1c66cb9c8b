package adapter

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// Layout defaults.
const (
	DefaultPlugin       = "allure-maven-plugin"
	DefaultRunPrefix    = "Run"
	ConsolidatedDirName = "ConsolidatedReport"
	ReportDirName       = "allure-report"
	ManifestFileName    = "consolidation.json"

	siteDirName        = "site"
	dataDirName        = "data"
	testCasesDirName   = "test-cases"
	attachmentsDirName = "attachments"
	widgetsDirName     = "widgets"
	jsonExt            = ".json"
)

// Layout resolves every input and output path of a consolidation run. It is a
// pure function of its fields and never touches the filesystem.
type Layout struct {
	InputRoot  m.Path
	OutputRoot m.Path
	Plugin     string
	RunPrefix  string
}

// NewLayout builds a Layout, falling back to defaults for empty values.
func NewLayout(input, output m.Path, plugin, runPrefix string) Layout {
	if strings.TrimSpace(plugin) == "" {
		plugin = DefaultPlugin
	}

	if strings.TrimSpace(runPrefix) == "" {
		runPrefix = DefaultRunPrefix
	}

	return Layout{
		InputRoot:  input,
		OutputRoot: output,
		Plugin:     plugin,
		RunPrefix:  runPrefix,
	}
}

// RunID returns the run identifier of iteration index (1-based).
func (l Layout) RunID(index int) string {
	return fmt.Sprintf("%s%d", l.RunPrefix, index)
}

// ParseRunIndex extracts the iteration index from a run directory name.
func (l Layout) ParseRunIndex(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, l.RunPrefix)
	if !ok || digits == "" {
		return 0, false
	}

	index, err := strconv.Atoi(digits)
	if err != nil || index <= 0 {
		return 0, false
	}

	return index, true
}

// Iterations returns Run1..RunN.
func (l Layout) Iterations(count int) []m.Iteration {
	iterations := make([]m.Iteration, 0, count)
	for i := 1; i <= count; i++ {
		iterations = append(iterations, m.Iteration{Index: i, RunID: l.RunID(i)})
	}

	return iterations
}

// IterationDir is <input>/<run>/site/<plugin>.
func (l Layout) IterationDir(runID string) m.Path {
	return l.join(l.InputRoot, runID, siteDirName, l.Plugin)
}

// DataDir is the iteration's data directory.
func (l Layout) DataDir(runID string) m.Path {
	return l.join(l.IterationDir(runID), dataDirName)
}

// TaxonomyFile is the exported tree of taxonomy for runID.
func (l Layout) TaxonomyFile(runID string, taxonomy m.TaxonomyName) m.Path {
	return l.DataFile(runID, string(taxonomy))
}

// DataFile is data/<name>.json of runID.
func (l Layout) DataFile(runID, name string) m.Path {
	return l.join(l.DataDir(runID), name+jsonExt)
}

// TestCasesDir holds the per-test-case documents of runID.
func (l Layout) TestCasesDir(runID string) m.Path {
	return l.join(l.DataDir(runID), testCasesDirName)
}

// AttachmentFile is the stored attachment named source of runID.
func (l Layout) AttachmentFile(runID, source string) m.Path {
	return l.join(l.DataDir(runID), attachmentsDirName, source)
}

// WidgetsDir holds the exported widgets of runID.
func (l Layout) WidgetsDir(runID string) m.Path {
	return l.join(l.IterationDir(runID), widgetsDirName)
}

// ConsolidatedDir is <output>/ConsolidatedReport.
func (l Layout) ConsolidatedDir() m.Path {
	return l.join(l.OutputRoot, ConsolidatedDirName)
}

// ReportDir is <output>/ConsolidatedReport/allure-report.
func (l Layout) ReportDir() m.Path {
	return l.join(l.ConsolidatedDir(), ReportDirName)
}

// ManifestFile is the run manifest written next to the report.
func (l Layout) ManifestFile() m.Path {
	return l.join(l.ConsolidatedDir(), ManifestFileName)
}

// OutputDataDir is the consolidated data directory.
func (l Layout) OutputDataDir() m.Path {
	return l.join(l.ReportDir(), dataDirName)
}

// OutputTaxonomyFile is the consolidated tree of taxonomy.
func (l Layout) OutputTaxonomyFile(taxonomy m.TaxonomyName) m.Path {
	return l.OutputDataFile(string(taxonomy))
}

// OutputDataFile is data/<name>.json of the consolidated report.
func (l Layout) OutputDataFile(name string) m.Path {
	return l.join(l.OutputDataDir(), name+jsonExt)
}

// OutputTestCaseFile is the archived document of test case uid.
func (l Layout) OutputTestCaseFile(uid string) m.Path {
	return l.join(l.OutputDataDir(), testCasesDirName, uid+jsonExt)
}

// OutputAttachmentFile is the archived attachment named source.
func (l Layout) OutputAttachmentFile(source string) m.Path {
	return l.join(l.OutputDataDir(), attachmentsDirName, source)
}

// OutputWidgetsDir is the consolidated widgets directory.
func (l Layout) OutputWidgetsDir() m.Path {
	return l.join(l.ReportDir(), widgetsDirName)
}

// OutputWidgetFile is widgets/<name>.json of the consolidated report.
func (l Layout) OutputWidgetFile(name string) m.Path {
	return l.join(l.OutputWidgetsDir(), name+jsonExt)
}

// ShellSkips lists the iteration entries that are rebuilt rather than copied.
func (l Layout) ShellSkips() []string {
	return []string{dataDirName, widgetsDirName}
}

// IsPlainName reports whether name can be joined below a report directory: a
// single local path element with no separators or parent references.
func IsPlainName(name string) bool {
	return name != "" && filepath.IsLocal(name) && filepath.Base(name) == name
}

func (l Layout) join(base m.Path, elem ...string) m.Path {
	return m.Path(filepath.Join(append([]string{string(base)}, elem...)...))
}

// DiscoverIterations lists the run directories below the input root, ordered
// by iteration index.
func DiscoverIterations(fs ReportFSAdapter, layout Layout) ([]m.Iteration, error) {
	names, err := fs.ListDir(layout.InputRoot)
	if err != nil {
		return nil, fmt.Errorf("list input root %s: %w", layout.InputRoot, err)
	}

	var iterations []m.Iteration

	for _, name := range names {
		index, ok := layout.ParseRunIndex(name)
		if !ok {
			continue
		}

		info, err := fs.FileInfo(fs.JoinPath(string(layout.InputRoot), name))
		if err != nil || !info.IsDir() {
			continue
		}

		iterations = append(iterations, m.Iteration{Index: index, RunID: name})
	}

	sort.Slice(iterations, func(i, j int) bool {
		return iterations[i].Index < iterations[j].Index
	})

	return iterations, nil
}

// DescribeIteration reports which exports an iteration provides.
func DescribeIteration(fs ReportFSAdapter, layout Layout, iteration m.Iteration) m.IterationInfo {
	info := m.IterationInfo{
		Iteration:  iteration,
		Dir:        layout.IterationDir(iteration.RunID),
		Taxonomies: make(map[m.TaxonomyName]bool, len(m.Taxonomies)),
	}

	for _, taxonomy := range m.Taxonomies {
		stat, err := fs.FileInfo(layout.TaxonomyFile(iteration.RunID, taxonomy))
		info.Taxonomies[taxonomy] = err == nil && !stat.IsDir()
	}

	names, err := fs.ListDir(layout.TestCasesDir(iteration.RunID))
	if err == nil {
		for _, name := range names {
			if strings.HasSuffix(name, jsonExt) {
				info.TestCases++
			}
		}
	}

	return info
}
