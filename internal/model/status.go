package model

import "strings"

// Status is the outcome of a test case, spelled the way report exports spell it.
type Status string

const (
	// StatusPassed marks a test case that passed.
	StatusPassed Status = "passed"
	// StatusFailed marks an assertion failure.
	StatusFailed Status = "failed"
	// StatusBroken marks an unexpected error during the test.
	StatusBroken Status = "broken"
	// StatusSkipped marks a test case that did not run.
	StatusSkipped Status = "skipped"
	// StatusUnknown is used when no outcome was recorded.
	StatusUnknown Status = "unknown"
)

// ParseStatus converts a free-form status ("Failed", " PASSED ") into a Status.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusPassed:
		return StatusPassed, true
	case StatusFailed:
		return StatusFailed, true
	case StatusBroken:
		return StatusBroken, true
	case StatusSkipped:
		return StatusSkipped, true
	case StatusUnknown:
		return StatusUnknown, true
	}

	return "", false
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if s == "" {
		return string(StatusUnknown)
	}

	return string(s)
}
