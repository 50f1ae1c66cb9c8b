package model

import "time"

// Warning is a recoverable problem met while consolidating. The run carries on
// and the warning ends up in the run manifest.
type Warning struct {
	Stage  string `json:"stage"`
	Path   Path   `json:"path,omitempty"`
	Reason string `json:"reason"`
}

// Result summarizes one consolidation run.
type Result struct {
	RunID      string               `json:"runId"`
	StartedAt  time.Time            `json:"startedAt"`
	FinishedAt time.Time            `json:"finishedAt"`
	Iterations []string             `json:"iterations"`
	Output     Path                 `json:"output"`
	TestCases  int                  `json:"testCases"`
	Overrides  int                  `json:"overrides"`
	Leaves     map[TaxonomyName]int `json:"leaves"`
	Widgets    map[string]Widget    `json:"widgets"`
	Summary    StatisticCounter     `json:"summary"`
	Warnings   []Warning            `json:"warnings"`
	Archive    Path                 `json:"archive,omitempty"`
}

// Complete reports whether the run finished without warnings.
func (r Result) Complete() bool {
	return len(r.Warnings) == 0
}
