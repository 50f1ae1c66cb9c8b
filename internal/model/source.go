// Package model defines the data structures shared by the consolidation engine.
package model

// Path represents a file system path.
type Path string

// Iteration identifies one exported test-run report (Run<k>).
type Iteration struct {
	Index int
	RunID string
}

// IterationInfo describes which artifacts an iteration actually exports.
type IterationInfo struct {
	Iteration
	Dir        Path
	Taxonomies map[TaxonomyName]bool
	TestCases  int
}
