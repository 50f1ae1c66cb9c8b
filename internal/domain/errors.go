package domain

import (
	"errors"
	"fmt"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

var (
	// ErrNoIterations is returned when the input root holds no iteration exports.
	ErrNoIterations = errors.New("no iterations to consolidate")
	// ErrIncompleteConsolidation is returned in strict mode when a run finished
	// with warnings.
	ErrIncompleteConsolidation = errors.New("consolidation finished with warnings")
)

// LedgerLoadError reports that the execution ledger could not be opened.
type LedgerLoadError struct {
	Path m.Path
	Err  error
}

func (e *LedgerLoadError) Error() string {
	return fmt.Sprintf("load execution ledger %s: %v", e.Path, e.Err)
}

func (e *LedgerLoadError) Unwrap() error {
	return e.Err
}
