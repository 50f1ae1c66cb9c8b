package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"allmerge.dev/pkg/allmerge/internal/adapter"
	m "allmerge.dev/pkg/allmerge/internal/model"
)

// Pass names the merge pass that admitted a leaf.
type Pass string

// Merge passes.
const (
	PassBaseline Pass = "baseline"
	PassOverride Pass = "override"
)

// BranchRef identifies a branch on the path to a leaf.
type BranchRef struct {
	UID  string
	Name string
}

// Admission records one leaf entering (or, when Excluded, being withheld from)
// a merged tree. Widgets are computed by replaying admissions in order.
type Admission struct {
	Pass     Pass
	Path     []BranchRef
	LeafUID  string
	LeafName string
	Status   m.Status
	Excluded bool
}

// Item returns the top-level branch the leaf is filed under.
func (a Admission) Item() (BranchRef, bool) {
	if len(a.Path) == 0 {
		return BranchRef{}, false
	}

	return a.Path[0], true
}

// TestCaseGroup is a node found at leaf depth that holds several outcomes. It
// is kept aside instead of being merged as a leaf.
type TestCaseGroup struct {
	Path []*m.HierarchyNode
	Node *m.HierarchyNode
}

// TaxonomyMerger folds the exported trees of one taxonomy into a single tree.
// Structure is keyed by uid at every level; siblings never share a uid and
// nodes are never removed or moved.
type TaxonomyMerger struct {
	def       m.TaxonomyDefinition
	store     adapter.ReportStore
	layout    adapter.Layout
	gate      LeafGate
	selection LeafSelection
	logger    *slog.Logger

	root       *m.HierarchyNode
	groups     []TestCaseGroup
	groupKeys  map[string]struct{}
	excluded   map[string]struct{}
	admissions []Admission
	trees      map[string]*m.HierarchyNode
	warnings   []m.Warning
}

// NewTaxonomyMerger creates a merger for def.
func NewTaxonomyMerger(
	def m.TaxonomyDefinition,
	store adapter.ReportStore,
	layout adapter.Layout,
	gate LeafGate,
	logger *slog.Logger,
) *TaxonomyMerger {
	if logger == nil {
		logger = slog.Default()
	}

	if gate == nil {
		gate = UngatedPolicy{}
	}

	return &TaxonomyMerger{
		def:       def,
		store:     store,
		layout:    layout,
		gate:      gate,
		selection: NameKeyedLeafSelection{},
		logger:    logger.With("taxonomy", def.Name),
		groupKeys: make(map[string]struct{}),
		excluded:  make(map[string]struct{}),
		trees:     make(map[string]*m.HierarchyNode),
	}
}

// Definition returns the taxonomy definition.
func (t *TaxonomyMerger) Definition() m.TaxonomyDefinition {
	return t.def
}

// MergeBaseline folds every iteration's tree, admitting passed leaves that
// pass the gate. An iteration whose file is missing or malformed is skipped
// for this taxonomy only.
func (t *TaxonomyMerger) MergeBaseline(ctx context.Context, iterations []m.Iteration) error {
	if !t.def.Gated {
		t.logger.Debug("taxonomy is not gated on the registry")
	}

	for _, iteration := range iterations {
		if err := ctx.Err(); err != nil {
			return err
		}

		src, ok := t.tree(iteration.RunID)
		if !ok {
			continue
		}

		before := len(t.admissions)
		t.walkBaseline(src, nil, 0, false)

		t.logger.Debug("baseline merged", "run", iteration.RunID, "admitted", len(t.admissions)-before)
	}

	return nil
}

func (t *TaxonomyMerger) walkBaseline(src *m.HierarchyNode, path []*m.HierarchyNode, depth int, excluded bool) {
	for _, child := range src.Children {
		switch {
		case child.IsLeaf():
			if child.Status == m.StatusPassed {
				t.admit(PassBaseline, path, child, child.Status, excluded)
			}
		case t.def.LeafDepth(depth):
			t.mergeGroup(path, child, excluded)
		default:
			childExcluded := excluded || t.def.ExcludesPrecondition(depth, child.Name)
			t.walkBaseline(child, appendPath(path, child), depth+1, childExcluded)
		}
	}
}

// mergeGroup unwraps a single-outcome group into its leaf and keeps larger
// groups in the side table.
func (t *TaxonomyMerger) mergeGroup(path []*m.HierarchyNode, group *m.HierarchyNode, excluded bool) {
	if len(group.Children) == 1 && group.Children[0].IsLeaf() {
		leaf := group.Children[0]
		if leaf.Status == m.StatusPassed {
			t.admit(PassBaseline, path, leaf, leaf.Status, excluded)
		}

		return
	}

	if excluded {
		return
	}

	key := pathKey(path) + "/" + group.UID
	if _, seen := t.groupKeys[key]; seen {
		return
	}

	t.groupKeys[key] = struct{}{}
	t.groups = append(t.groups, TestCaseGroup{Path: path, Node: group.Clone()})
	t.logger.Debug("test case group kept aside", "uid", group.UID, "children", len(group.Children))
}

// MergeOverrides applies the ledger. For every entry the first leaf of that
// run whose name matches the ledger id is taken with the ledger status,
// whatever status it was exported with.
func (t *TaxonomyMerger) MergeOverrides(ctx context.Context, ledger *ExecutionLedger) error {
	for _, runID := range ledger.Runs() {
		if err := ctx.Err(); err != nil {
			return err
		}

		entries := ledger.Entries(runID)
		if len(entries) == 0 {
			continue
		}

		src, ok := t.tree(runID)
		if !ok {
			continue
		}

		for _, entry := range entries {
			path, leaf, ok := t.selectLeaf(src, nil, 0, entry.TestCaseID)
			if !ok {
				t.logger.Debug("override without leaf", "run", runID, "testCase", entry.TestCaseID)
				continue
			}

			t.admit(PassOverride, path, leaf, entry.Status, false)
		}
	}

	return nil
}

func (t *TaxonomyMerger) selectLeaf(
	src *m.HierarchyNode,
	path []*m.HierarchyNode,
	depth int,
	testCaseID string,
) ([]*m.HierarchyNode, *m.HierarchyNode, bool) {
	for _, child := range src.Children {
		switch {
		case child.IsLeaf():
			if t.selection.Matches(child, testCaseID) {
				return path, child, true
			}
		case t.def.LeafDepth(depth):
			if len(child.Children) == 1 && child.Children[0].IsLeaf() && t.selection.Matches(child.Children[0], testCaseID) {
				return path, child.Children[0], true
			}
		case t.def.ExcludesPrecondition(depth, child.Name):
			continue
		default:
			if found, leaf, ok := t.selectLeaf(child, appendPath(path, child), depth+1, testCaseID); ok {
				return found, leaf, true
			}
		}
	}

	return nil, nil, false
}

// admit inserts leaf below path with status. Excluded leaves are only recorded.
func (t *TaxonomyMerger) admit(pass Pass, path []*m.HierarchyNode, leaf *m.HierarchyNode, status m.Status, excluded bool) {
	if !t.gate.Admit(leaf.UID) {
		return
	}

	admission := Admission{
		Pass:     pass,
		Path:     branchRefs(path),
		LeafUID:  leaf.UID,
		LeafName: leaf.Name,
		Status:   status,
		Excluded: excluded,
	}

	if excluded {
		key := pathKey(path) + "/" + leaf.UID
		if _, seen := t.excluded[key]; seen {
			return
		}

		t.excluded[key] = struct{}{}
		t.admissions = append(t.admissions, admission)

		return
	}

	parent := t.ensurePath(t.ensureRoot(), path)

	if existing := parent.FindChild(leaf.UID); existing != nil {
		if pass == PassBaseline || existing.Status == status {
			return
		}

		existing.Status = status
		t.admissions = append(t.admissions, admission)

		return
	}

	inserted := leaf.Clone()
	inserted.Status = status
	parent.AppendChild(inserted)

	t.admissions = append(t.admissions, admission)
}

func (t *TaxonomyMerger) ensureRoot() *m.HierarchyNode {
	if t.root == nil {
		t.root = m.NewBranch("", string(t.def.Name))
	}

	return t.root
}

// ensurePath finds or creates every branch of path below parent, by uid.
func (t *TaxonomyMerger) ensurePath(parent *m.HierarchyNode, path []*m.HierarchyNode) *m.HierarchyNode {
	for _, branch := range path {
		next := parent.FindChild(branch.UID)
		if next == nil {
			next = branch.CloneBranch()
			parent.AppendChild(next)
		}

		parent = next
	}

	return parent
}

// tree returns the exported tree of runID, reading it once.
func (t *TaxonomyMerger) tree(runID string) (*m.HierarchyNode, bool) {
	if src, ok := t.trees[runID]; ok {
		return src, src != nil
	}

	path := t.layout.TaxonomyFile(runID, t.def.Name)

	src, err := t.store.ReadTree(path)
	if err != nil {
		t.trees[runID] = nil
		t.warnings = append(t.warnings, m.Warning{
			Stage:  "taxonomy." + string(t.def.Name),
			Path:   path,
			Reason: fmt.Sprintf("iteration skipped: %v", err),
		})
		t.logger.Warn("taxonomy source skipped", "run", runID, "path", path, "error", err)

		return nil, false
	}

	t.trees[runID] = src

	if t.root == nil {
		t.root = src.CloneBranch()
	}

	return src, true
}

// Tree returns a copy of the merged tree with the side-table groups attached
// to their parent branches.
func (t *TaxonomyMerger) Tree() *m.HierarchyNode {
	root := t.ensureRoot().Clone()

	for _, group := range t.groups {
		parent := t.ensurePath(root, group.Path)
		if parent.FindChild(group.Node.UID) == nil {
			parent.AppendChild(group.Node.Clone())
		}
	}

	return root
}

// Groups returns the test-case groups kept aside.
func (t *TaxonomyMerger) Groups() []TestCaseGroup {
	return append([]TestCaseGroup(nil), t.groups...)
}

// Admissions returns every admission in the order it happened.
func (t *TaxonomyMerger) Admissions() []Admission {
	return append([]Admission(nil), t.admissions...)
}

// Warnings returns the sources skipped so far.
func (t *TaxonomyMerger) Warnings() []m.Warning {
	return append([]m.Warning(nil), t.warnings...)
}

// LeafCount is the number of leaves in the merged tree, groups excluded.
func (t *TaxonomyMerger) LeafCount() int {
	if t.root == nil {
		return 0
	}

	return t.root.LeafCount()
}

func appendPath(path []*m.HierarchyNode, node *m.HierarchyNode) []*m.HierarchyNode {
	next := make([]*m.HierarchyNode, len(path), len(path)+1)
	copy(next, path)

	return append(next, node)
}

func branchRefs(path []*m.HierarchyNode) []BranchRef {
	refs := make([]BranchRef, 0, len(path))
	for _, node := range path {
		refs = append(refs, BranchRef{UID: node.UID, Name: node.Name})
	}

	return refs
}

func pathKey(path []*m.HierarchyNode) string {
	uids := make([]string, 0, len(path))
	for _, node := range path {
		uids = append(uids, node.UID)
	}

	return strings.Join(uids, "/")
}
