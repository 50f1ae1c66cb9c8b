package domain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"allmerge.dev/pkg/allmerge/internal/adapter"
	m "allmerge.dev/pkg/allmerge/internal/model"
)

// reportFixture writes exported iterations under a temporary input root.
type reportFixture struct {
	t      *testing.T
	fs     *adapter.LocalReportFSAdapter
	store  *adapter.JSONReportStore
	layout adapter.Layout
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()

	fs := adapter.NewLocalReportFSAdapter()

	return &reportFixture{
		t:      t,
		fs:     fs,
		store:  adapter.NewJSONReportStore(fs),
		layout: adapter.NewLayout(m.Path(t.TempDir()), m.Path(t.TempDir()), "", ""),
	}
}

type testCaseSpec struct {
	uid         string
	name        string
	status      m.Status
	testClass   string
	feature     string
	severity    string
	start       int64
	duration    int64
	attachments []string
	stepFiles   []string
}

func (f *reportFixture) writeFile(path m.Path, data []byte) {
	f.t.Helper()
	require.NoError(f.t, os.MkdirAll(filepath.Dir(string(path)), 0o750))
	require.NoError(f.t, os.WriteFile(string(path), data, 0o600))
}

func (f *reportFixture) writeJSON(path m.Path, value any) {
	f.t.Helper()

	data, err := json.Marshal(value)
	require.NoError(f.t, err)
	f.writeFile(path, data)
}

func testCaseDoc(tc testCaseSpec) map[string]any {
	testClass := tc.testClass
	if testClass == "" {
		testClass = "com.example.CheckoutTest"
	}

	labels := []map[string]string{{"name": "testClass", "value": testClass}}
	if tc.feature != "" {
		labels = append(labels, map[string]string{"name": "feature", "value": tc.feature})
	}

	if tc.severity != "" {
		labels = append(labels, map[string]string{"name": "severity", "value": tc.severity})
	}

	attachments := []map[string]string{}
	for _, source := range tc.attachments {
		attachments = append(attachments, map[string]string{"uid": "a-" + source, "name": source, "source": source})
	}

	stepAttachments := []map[string]string{}
	for _, source := range tc.stepFiles {
		stepAttachments = append(stepAttachments, map[string]string{"name": source, "source": source})
	}

	return map[string]any{
		"uid":    tc.uid,
		"name":   tc.name,
		"status": string(tc.status),
		"labels": labels,
		"time": map[string]int64{
			"start":    tc.start,
			"stop":     tc.start + tc.duration,
			"duration": tc.duration,
		},
		"testStage": map[string]any{
			"attachments": attachments,
			"steps": []any{
				map[string]any{
					"name":        "outer",
					"attachments": []any{},
					"steps": []any{
						map[string]any{"name": "inner", "attachments": stepAttachments, "steps": []any{}},
					},
				},
			},
		},
	}
}

func (f *reportFixture) testCase(runID string, tc testCaseSpec) {
	f.t.Helper()

	f.writeJSON(f.layout.DataFile(runID, "test-cases/"+tc.uid), testCaseDoc(tc))

	for _, source := range append(append([]string(nil), tc.attachments...), tc.stepFiles...) {
		f.writeFile(f.layout.AttachmentFile(runID, source), []byte("attachment "+source))
	}
}

func (f *reportFixture) tree(runID string, taxonomy m.TaxonomyName, children ...*m.HierarchyNode) {
	f.t.Helper()

	root := m.NewBranch("root-"+string(taxonomy), string(taxonomy))
	for _, child := range children {
		root.AppendChild(child)
	}

	f.writeJSON(f.layout.TaxonomyFile(runID, taxonomy), root)
}

func (f *reportFixture) registry() *TestCaseRegistry {
	return NewTestCaseRegistry(f.fs, f.store, f.layout, 1, nil)
}

func (f *reportFixture) merger(name m.TaxonomyName, registry Registry) *TaxonomyMerger {
	def, err := Definition(name)
	require.NoError(f.t, err)

	return NewTaxonomyMerger(def, f.store, f.layout, GateFor(def, registry), nil)
}

func branch(uid, name string, children ...*m.HierarchyNode) *m.HierarchyNode {
	node := m.NewBranch(uid, name)
	for _, child := range children {
		node.AppendChild(child)
	}

	return node
}

func leaf(uid, name string, status m.Status) *m.HierarchyNode {
	return &m.HierarchyNode{UID: uid, Name: name, Status: status}
}

func iterations(runIDs ...string) []m.Iteration {
	out := make([]m.Iteration, 0, len(runIDs))
	for i, id := range runIDs {
		out = append(out, m.Iteration{Index: i + 1, RunID: id})
	}

	return out
}

func ledgerOf(sheets ...m.LedgerSheet) *ExecutionLedger {
	return NewExecutionLedger(sheets)
}

// staticRegistry is a Registry backed by a set.
type staticRegistry map[string]bool

func (r staticRegistry) Contains(id string) bool {
	return r[id]
}

func assertSiblingsUnique(t *testing.T, root *m.HierarchyNode) {
	t.Helper()

	root.Walk(func(node *m.HierarchyNode, _ int) {
		seen := make(map[string]bool, len(node.Children))
		for _, child := range node.Children {
			require.Falsef(t, seen[child.UID], "duplicate sibling %q under %q", child.UID, node.UID)
			seen[child.UID] = true
		}
	})
}
