package domain

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

func TestTaxonomyMerger_SameLeafAcrossIterationsMergedOnce(t *testing.T) {
	f := newReportFixture(t)
	for _, run := range []string{"Run1", "Run2"} {
		f.tree(run, m.TaxonomyPackages,
			branch("pkg-1", "pkg-1", branch("cls-1", "cls-1", leaf("tc-1", "tc-1", m.StatusPassed))))
	}

	merger := f.merger(m.TaxonomyPackages, staticRegistry{"tc-1": true})
	require.NoError(t, merger.MergeBaseline(context.Background(), iterations("Run1", "Run2")))

	want := branch("root-packages", "packages",
		branch("pkg-1", "pkg-1", branch("cls-1", "cls-1", leaf("tc-1", "tc-1", m.StatusPassed))))

	if diff := cmp.Diff(want, merger.Tree()); diff != "" {
		t.Fatalf("merged tree mismatch (-want +got):\n%s", diff)
	}

	assert.Len(t, merger.Admissions(), 1)
	assert.Equal(t, 1, merger.LeafCount())
}

func TestTaxonomyMerger_BranchesMergedByUIDNotName(t *testing.T) {
	f := newReportFixture(t)
	f.tree("Run1", m.TaxonomySuites, branch("s-1", "Checkout", leaf("a", "A", m.StatusPassed)))
	f.tree("Run2", m.TaxonomySuites,
		branch("s-1", "Checkout (renamed)", leaf("b", "B", m.StatusPassed)),
		branch("s-2", "Checkout", leaf("c", "C", m.StatusPassed)))

	merger := f.merger(m.TaxonomySuites, staticRegistry{"a": true, "b": true, "c": true})
	require.NoError(t, merger.MergeBaseline(context.Background(), iterations("Run1", "Run2")))

	tree := merger.Tree()
	assertSiblingsUnique(t, tree)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "Checkout", tree.Children[0].Name, "first sight names the branch")
	assert.Len(t, tree.Children[0].Children, 2)
	assert.Equal(t, "s-2", tree.Children[1].UID)
}

func TestTaxonomyMerger_GatedLeavesAreRegistered(t *testing.T) {
	f := newReportFixture(t)
	f.tree("Run1", m.TaxonomySuites,
		branch("s-1", "Suite",
			leaf("tc-1", "TC-1", m.StatusPassed),
			leaf("tc-2", "TC-2", m.StatusPassed),
			leaf("tc-3", "TC-3", m.StatusFailed)))

	registry := staticRegistry{"tc-1": true, "tc-3": true}
	merger := f.merger(m.TaxonomySuites, registry)
	require.NoError(t, merger.MergeBaseline(context.Background(), iterations("Run1")))

	var leaves []string

	merger.Tree().Walk(func(node *m.HierarchyNode, _ int) {
		if node.IsLeaf() {
			leaves = append(leaves, node.UID)
			assert.Truef(t, registry.Contains(node.UID), "leaf %s is not registered", node.UID)
		}
	})

	assert.Equal(t, []string{"tc-1"}, leaves)
}

func TestTaxonomyMerger_GatedMergeBeforeRegistryIsEmpty(t *testing.T) {
	f := newReportFixture(t)
	f.testCase("Run1", testCaseSpec{uid: "tc-1", name: "TC-1", status: m.StatusPassed})
	f.tree("Run1", m.TaxonomyCategories,
		branch("c-1", "Passed Tests", branch("msg", "ok", leaf("tc-1", "TC-1", m.StatusPassed))))

	registry := f.registry()

	early := f.merger(m.TaxonomyCategories, registry)
	require.NoError(t, early.MergeBaseline(context.Background(), iterations("Run1")))
	assert.Empty(t, early.Tree().Children)
	assert.Empty(t, early.Admissions())

	require.NoError(t, registry.IngestBaseline(context.Background(), iterations("Run1")))

	late := f.merger(m.TaxonomyCategories, registry)
	require.NoError(t, late.MergeBaseline(context.Background(), iterations("Run1")))
	assert.Equal(t, 1, late.LeafCount())
}

func TestTaxonomyMerger_BehaviorsIgnoreRegistry(t *testing.T) {
	f := newReportFixture(t)
	f.tree("Run1", m.TaxonomyBehaviors,
		branch("f-1", "Checkout", branch("st-1", "Pay", leaf("tc-1", "TC-1", m.StatusPassed))))

	merger := f.merger(m.TaxonomyBehaviors, staticRegistry{})
	require.NoError(t, merger.MergeBaseline(context.Background(), iterations("Run1")))

	assert.Equal(t, 1, merger.LeafCount())
}

func TestTaxonomyMerger_PreconditionBranchExcluded(t *testing.T) {
	f := newReportFixture(t)
	for _, run := range []string{"Run1", "Run2"} {
		f.tree(run, m.TaxonomyBehaviors,
			branch("f-pre", "Precondition", branch("st-pre", "Login", leaf("setup", "Setup", m.StatusPassed))),
			branch("f-1", "Checkout", branch("st-1", "Pay", leaf("tc-1", "TC-1", m.StatusPassed))))
	}

	merger := f.merger(m.TaxonomyBehaviors, nil)
	require.NoError(t, merger.MergeBaseline(context.Background(), iterations("Run1", "Run2")))

	tree := merger.Tree()
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "Checkout", tree.Children[0].Name)

	admissions := merger.Admissions()
	require.Len(t, admissions, 2)
	assert.True(t, admissions[0].Excluded)
	assert.Equal(t, "Precondition", admissions[0].Path[0].Name)
	assert.False(t, admissions[1].Excluded)
}

func TestTaxonomyMerger_TimelineKeepsPreconditionBranch(t *testing.T) {
	f := newReportFixture(t)
	f.tree("Run1", m.TaxonomyTimeline,
		branch("h-1", "Precondition", branch("th-1", "main", leaf("tc-1", "TC-1", m.StatusPassed))))

	merger := f.merger(m.TaxonomyTimeline, staticRegistry{"tc-1": true})
	require.NoError(t, merger.MergeBaseline(context.Background(), iterations("Run1")))

	assert.Equal(t, 1, merger.LeafCount())
}

func TestTaxonomyMerger_MissingIterationFileSkipped(t *testing.T) {
	f := newReportFixture(t)
	f.tree("Run1", m.TaxonomyBehaviors, branch("f-1", "One", branch("s", "s", leaf("tc-1", "TC-1", m.StatusPassed))))
	f.tree("Run3", m.TaxonomyBehaviors, branch("f-3", "Three", branch("s", "s", leaf("tc-3", "TC-3", m.StatusPassed))))
	f.writeFile(f.layout.TaxonomyFile("Run4", m.TaxonomyBehaviors), []byte(`{"uid": "r", "children": [`))

	merger := f.merger(m.TaxonomyBehaviors, nil)
	require.NoError(t, merger.MergeBaseline(context.Background(), iterations("Run1", "Run2", "Run3", "Run4")))

	assert.Equal(t, 2, merger.LeafCount())

	warnings := merger.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, f.layout.TaxonomyFile("Run2", m.TaxonomyBehaviors), warnings[0].Path)
	assert.Equal(t, f.layout.TaxonomyFile("Run4", m.TaxonomyBehaviors), warnings[1].Path)
	assert.Equal(t, "taxonomy.behaviors", warnings[0].Stage)
}

func TestTaxonomyMerger_OverrideSelectsLeafByName(t *testing.T) {
	f := newReportFixture(t)
	f.tree("Run1", m.TaxonomySuites,
		branch("s-1", "Suite",
			leaf("uid-1", "TC-1", m.StatusFailed),
			leaf("TC-2", "second", m.StatusFailed)))

	merger := f.merger(m.TaxonomySuites, staticRegistry{"uid-1": true, "TC-2": true})
	ctx := context.Background()

	require.NoError(t, merger.MergeBaseline(ctx, iterations("Run1")))
	assert.Zero(t, merger.LeafCount(), "failed leaves are not part of the baseline")

	require.NoError(t, merger.MergeOverrides(ctx, ledgerOf(m.LedgerSheet{
		RunID:    "Run1",
		Statuses: map[string]m.Status{"TC-1": m.StatusFailed, "TC-2": m.StatusFailed},
	})))

	tree := merger.Tree()
	require.Len(t, tree.Children, 1)
	require.Len(t, tree.Children[0].Children, 1, "only the name matches a ledger id")
	assert.Equal(t, "uid-1", tree.Children[0].Children[0].UID)

	admissions := merger.Admissions()
	require.Len(t, admissions, 1)
	assert.Equal(t, PassOverride, admissions[0].Pass)
	assert.Equal(t, m.StatusFailed, admissions[0].Status)
}

func TestTaxonomyMerger_OverrideUpdatesExistingLeaf(t *testing.T) {
	f := newReportFixture(t)
	f.tree("Run1", m.TaxonomySuites, branch("s-1", "Suite", leaf("tc-1", "TC-1", m.StatusFailed)))
	f.tree("Run2", m.TaxonomySuites, branch("s-1", "Suite", leaf("tc-1", "TC-1", m.StatusPassed)))

	merger := f.merger(m.TaxonomySuites, staticRegistry{"tc-1": true})
	ctx := context.Background()

	require.NoError(t, merger.MergeBaseline(ctx, iterations("Run1", "Run2")))
	require.NoError(t, merger.MergeOverrides(ctx, ledgerOf(m.LedgerSheet{
		RunID:    "Run1",
		Statuses: map[string]m.Status{"TC-1": m.StatusFailed},
	})))

	tree := merger.Tree()
	assertSiblingsUnique(t, tree)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, m.StatusFailed, tree.Children[0].Children[0].Status)

	admissions := merger.Admissions()
	require.Len(t, admissions, 2)
	assert.Equal(t, PassBaseline, admissions[0].Pass)
	assert.Equal(t, PassOverride, admissions[1].Pass)
}

func TestTaxonomyMerger_OverrideGatedOnRegistry(t *testing.T) {
	f := newReportFixture(t)
	f.tree("Run1", m.TaxonomyPackages, branch("p", "p", leaf("tc-1", "TC-1", m.StatusFailed)))

	merger := f.merger(m.TaxonomyPackages, staticRegistry{})
	require.NoError(t, merger.MergeOverrides(context.Background(), ledgerOf(m.LedgerSheet{
		RunID:    "Run1",
		Statuses: map[string]m.Status{"TC-1": m.StatusFailed},
	})))

	assert.Zero(t, merger.LeafCount())
}

func TestTaxonomyMerger_TestCaseGroups(t *testing.T) {
	f := newReportFixture(t)
	f.tree("Run1", m.TaxonomyCategories,
		branch("cat", "Product defects",
			branch("msg", "assertion",
				branch("single", "TC-1", leaf("tc-1", "TC-1", m.StatusPassed)),
				branch("multi", "TC-2", leaf("tc-2a", "TC-2", m.StatusPassed), leaf("tc-2b", "TC-2", m.StatusFailed)))))
	f.tree("Run2", m.TaxonomyCategories,
		branch("cat", "Product defects",
			branch("msg", "assertion",
				branch("multi", "TC-2", leaf("tc-2a", "TC-2", m.StatusPassed), leaf("tc-2b", "TC-2", m.StatusFailed)))))

	merger := f.merger(m.TaxonomyCategories, staticRegistry{"tc-1": true, "tc-2a": true})
	require.NoError(t, merger.MergeBaseline(context.Background(), iterations("Run1", "Run2")))

	require.Len(t, merger.Groups(), 1, "the same group seen twice is kept once")
	assert.Equal(t, "multi", merger.Groups()[0].Node.UID)
	assert.Equal(t, 1, merger.LeafCount(), "groups are not merged as leaves")

	msg := merger.Tree().Children[0].Children[0]
	require.Len(t, msg.Children, 2)
	assert.Equal(t, "tc-1", msg.Children[0].UID, "single-outcome group unwrapped into its leaf")
	assert.Equal(t, "multi", msg.Children[1].UID)
	assert.Len(t, msg.Children[1].Children, 2)
}

func TestTaxonomyMerger_TreeIsACopy(t *testing.T) {
	f := newReportFixture(t)
	f.tree("Run1", m.TaxonomySuites, branch("s-1", "Suite", leaf("tc-1", "TC-1", m.StatusPassed)))

	merger := f.merger(m.TaxonomySuites, staticRegistry{"tc-1": true})
	require.NoError(t, merger.MergeBaseline(context.Background(), iterations("Run1")))

	tree := merger.Tree()
	tree.Children[0].Children[0].Status = m.StatusBroken

	assert.Equal(t, m.StatusPassed, merger.Tree().Children[0].Children[0].Status)
}

func TestDefinitions(t *testing.T) {
	defs := Definitions()
	require.Len(t, defs, len(m.Taxonomies))

	for i, def := range defs {
		assert.Equal(t, m.Taxonomies[i], def.Name)
		assert.Equal(t, def.Name != m.TaxonomyBehaviors, def.Gated)
	}

	timeline, err := Definition(m.TaxonomyTimeline)
	require.NoError(t, err)
	assert.Equal(t, m.NoPreconditionLevel, timeline.PreconditionLevel)

	_, err = Definition("history")
	require.Error(t, err)
}
