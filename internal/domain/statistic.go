package domain

import (
	"fmt"
	"strings"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// CountingMode controls how a test case that changes status is counted.
type CountingMode string

const (
	// AdditiveCounting only ever adds deltas: a test case overridden from
	// passed to failed is counted under both statuses.
	AdditiveCounting CountingMode = "additive"
	// NetCounting tracks which status each test case is counted under and moves
	// it between buckets.
	NetCounting CountingMode = "net"
)

// ParseCountingMode parses a counting mode name. Empty means additive.
func ParseCountingMode(value string) (CountingMode, error) {
	switch CountingMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", AdditiveCounting:
		return AdditiveCounting, nil
	case NetCounting:
		return NetCounting, nil
	}

	return "", fmt.Errorf("unknown counting mode %q (want %s or %s)", value, AdditiveCounting, NetCounting)
}

// PreconditionTally counts precondition passes seen by the Behaviors widget.
// It belongs to one consolidation run.
type PreconditionTally struct {
	passed int
}

// Add records n precondition passes.
func (t *PreconditionTally) Add(n int) {
	t.passed += n
}

// Passed returns the recorded passes.
func (t *PreconditionTally) Passed() int {
	return t.passed
}

// PreconditionPolicy is consulted before an update of a row named like the
// precondition branch. It returns true when the update was consumed.
type PreconditionPolicy interface {
	HandlePrecondition(itemName string, delta m.StatisticCounter) bool
}

// RecordPreconditionPasses moves precondition passes into a tally instead of a
// row.
type RecordPreconditionPasses struct {
	Tally *PreconditionTally
}

// HandlePrecondition implements PreconditionPolicy.
func (p RecordPreconditionPasses) HandlePrecondition(itemName string, delta m.StatisticCounter) bool {
	if !isPreconditionName(itemName) {
		return false
	}

	if p.Tally != nil {
		p.Tally.Add(delta.Passed)
	}

	return true
}

// DropPreconditions ignores precondition updates.
type DropPreconditions struct{}

// HandlePrecondition implements PreconditionPolicy.
func (DropPreconditions) HandlePrecondition(itemName string, _ m.StatisticCounter) bool {
	return isPreconditionName(itemName)
}

// KeepPreconditions counts preconditions like any other item.
type KeepPreconditions struct{}

// HandlePrecondition implements PreconditionPolicy.
func (KeepPreconditions) HandlePrecondition(string, m.StatisticCounter) bool {
	return false
}

func isPreconditionName(name string) bool {
	return strings.TrimSpace(name) == m.PreconditionName
}

type membership struct {
	itemID     string
	testCaseID string
}

// StatisticAggregator maintains one counter row per item of a widget. Rows
// keep the order in which items were first seen.
type StatisticAggregator struct {
	name    string
	policy  PreconditionPolicy
	mode    CountingMode
	rows    []*m.WidgetItem
	index   map[string]int
	members map[membership]m.Status
}

// NewStatisticAggregator creates an empty aggregator.
func NewStatisticAggregator(name string, policy PreconditionPolicy, mode CountingMode) *StatisticAggregator {
	if policy == nil {
		policy = KeepPreconditions{}
	}

	if mode == "" {
		mode = AdditiveCounting
	}

	return &StatisticAggregator{
		name:    name,
		policy:  policy,
		mode:    mode,
		index:   make(map[string]int),
		members: make(map[membership]m.Status),
	}
}

// Name returns the widget name.
func (a *StatisticAggregator) Name() string {
	return a.name
}

// Update adds delta to the row of itemID, creating it on first use. Updates
// for precondition items go to the precondition policy instead.
func (a *StatisticAggregator) Update(itemID, itemName string, delta m.StatisticCounter) {
	if a.policy.HandlePrecondition(itemName, delta) {
		return
	}

	a.row(itemID, itemName).Statistic.Add(delta)
}

// Count records that testCaseID has status under itemID.
func (a *StatisticAggregator) Count(itemID, itemName, testCaseID string, status m.Status) {
	delta := m.DeltaFor(status)

	if a.mode == NetCounting {
		key := membership{itemID: itemID, testCaseID: testCaseID}

		previous, counted := a.members[key]
		if counted {
			if previous == status {
				return
			}

			delta.Sub(m.DeltaFor(previous))
		}

		a.members[key] = status
	}

	a.Update(itemID, itemName, delta)
}

// AdjustFirst subtracts delta from the first row accepted by match. It reports
// the adjusted row and whether any field had to be clamped at zero.
func (a *StatisticAggregator) AdjustFirst(match func(item m.WidgetItem) bool, delta m.StatisticCounter) (m.WidgetItem, bool, bool) {
	for _, row := range a.rows {
		if !match(*row) {
			continue
		}

		row.Statistic.Sub(delta)
		clamped := clampCounter(&row.Statistic)

		return *row, clamped, true
	}

	return m.WidgetItem{}, false, false
}

// Row returns the row of itemID.
func (a *StatisticAggregator) Row(itemID string) (m.WidgetItem, bool) {
	i, ok := a.index[itemID]
	if !ok {
		return m.WidgetItem{}, false
	}

	return *a.rows[i], true
}

// Items returns a copy of every row.
func (a *StatisticAggregator) Items() []m.WidgetItem {
	items := make([]m.WidgetItem, 0, len(a.rows))
	for _, row := range a.rows {
		items = append(items, *row)
	}

	return items
}

// Widget returns the widget document. Total is the row count.
func (a *StatisticAggregator) Widget() m.Widget {
	return m.Widget{Total: len(a.rows), Items: a.Items()}
}

// Totals sums every row.
func (a *StatisticAggregator) Totals() m.StatisticCounter {
	var total m.StatisticCounter
	for _, row := range a.rows {
		total.Add(row.Statistic)
	}

	return total
}

func (a *StatisticAggregator) row(itemID, itemName string) *m.WidgetItem {
	if i, ok := a.index[itemID]; ok {
		return a.rows[i]
	}

	a.index[itemID] = len(a.rows)
	row := &m.WidgetItem{UID: itemID, Name: itemName}
	a.rows = append(a.rows, row)

	return row
}

func clampCounter(c *m.StatisticCounter) bool {
	clamped := false

	for _, field := range []*int{&c.Failed, &c.Broken, &c.Skipped, &c.Passed, &c.Unknown} {
		if *field < 0 {
			*field = 0
			clamped = true
		}
	}

	c.Recompute()

	return clamped
}
