package domain

import (
	"fmt"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// taxonomyDefinitions is the static shape of every taxonomy. Behaviors is not
// gated on the registry while the other four are; this asymmetry is kept on
// purpose and is reported by the merge logs.
var taxonomyDefinitions = map[m.TaxonomyName]m.TaxonomyDefinition{
	m.TaxonomyBehaviors:  {Name: m.TaxonomyBehaviors, Levels: 2, PreconditionLevel: 0, Gated: false},
	m.TaxonomyCategories: {Name: m.TaxonomyCategories, Levels: 2, PreconditionLevel: 0, Gated: true},
	m.TaxonomyPackages:   {Name: m.TaxonomyPackages, Levels: m.VariableDepth, PreconditionLevel: 0, Gated: true},
	m.TaxonomySuites:     {Name: m.TaxonomySuites, Levels: m.VariableDepth, PreconditionLevel: 0, Gated: true},
	m.TaxonomyTimeline:   {Name: m.TaxonomyTimeline, Levels: 2, PreconditionLevel: m.NoPreconditionLevel, Gated: true},
}

// Definition returns the definition of a taxonomy.
func Definition(name m.TaxonomyName) (m.TaxonomyDefinition, error) {
	def, ok := taxonomyDefinitions[name]
	if !ok {
		return m.TaxonomyDefinition{}, fmt.Errorf("unknown taxonomy %q", name)
	}

	return def, nil
}

// Definitions returns every definition in processing order.
func Definitions() []m.TaxonomyDefinition {
	defs := make([]m.TaxonomyDefinition, 0, len(m.Taxonomies))
	for _, name := range m.Taxonomies {
		defs = append(defs, taxonomyDefinitions[name])
	}

	return defs
}

// LeafGate decides whether a leaf may enter a taxonomy tree.
type LeafGate interface {
	Admit(uid string) bool
}

// Registry is the read side of the test-case registry used as a join.
type Registry interface {
	Contains(id string) bool
}

// RegistryGate admits only leaves whose uid is registered.
type RegistryGate struct {
	Registry Registry
}

// Admit implements LeafGate.
func (g RegistryGate) Admit(uid string) bool {
	return g.Registry != nil && g.Registry.Contains(uid)
}

// UngatedPolicy admits every leaf.
type UngatedPolicy struct{}

// Admit implements LeafGate.
func (UngatedPolicy) Admit(string) bool {
	return true
}

// GateFor returns the gate a definition asks for.
func GateFor(def m.TaxonomyDefinition, registry Registry) LeafGate {
	if def.Gated {
		return RegistryGate{Registry: registry}
	}

	return UngatedPolicy{}
}

// LeafSelection picks the leaf an override entry refers to. Structural merging
// is always keyed by uid; only this selection step may use another key.
type LeafSelection interface {
	Matches(leaf *m.HierarchyNode, testCaseID string) bool
}

// NameKeyedLeafSelection matches the ledger's test case id against leaf names.
type NameKeyedLeafSelection struct{}

// Matches implements LeafSelection.
func (NameKeyedLeafSelection) Matches(leaf *m.HierarchyNode, testCaseID string) bool {
	return leaf.Name == testCaseID
}
