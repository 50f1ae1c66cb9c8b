package model

// TaxonomyName identifies one of the report groupings.
type TaxonomyName string

// Report taxonomies, in the order the pipeline processes them.
const (
	TaxonomyBehaviors  TaxonomyName = "behaviors"
	TaxonomyCategories TaxonomyName = "categories"
	TaxonomyPackages   TaxonomyName = "packages"
	TaxonomySuites     TaxonomyName = "suites"
	TaxonomyTimeline   TaxonomyName = "timeline"
)

// Taxonomies lists every taxonomy in processing order.
var Taxonomies = []TaxonomyName{
	TaxonomyBehaviors,
	TaxonomyCategories,
	TaxonomyPackages,
	TaxonomySuites,
	TaxonomyTimeline,
}

// NoPreconditionLevel disables precondition exclusion for a taxonomy.
const NoPreconditionLevel = -1

// VariableDepth marks a taxonomy whose leaves sit at any depth. Such trees have
// no test-case groups.
const VariableDepth = 0

// PreconditionName is the branch / feature name excluded from most outputs.
const PreconditionName = "Precondition"

// TaxonomyDefinition is the static shape of one taxonomy tree.
type TaxonomyDefinition struct {
	Name TaxonomyName
	// Levels is the number of branch levels above the leaves, or VariableDepth
	// for trees whose depth differs per test case.
	Levels int
	// PreconditionLevel is the branch depth whose "Precondition" node is
	// excluded, or NoPreconditionLevel.
	PreconditionLevel int
	// Gated admits a leaf only when its UID is in the test-case registry.
	Gated bool
}

// LeafDepth reports whether depth (0 for the root's children) is where leaves
// are expected.
func (d TaxonomyDefinition) LeafDepth(depth int) bool {
	return d.Levels != VariableDepth && depth >= d.Levels
}

// ExcludesPrecondition reports whether depth/name hits the precondition rule.
func (d TaxonomyDefinition) ExcludesPrecondition(depth int, name string) bool {
	return d.PreconditionLevel != NoPreconditionLevel && depth == d.PreconditionLevel && name == PreconditionName
}
