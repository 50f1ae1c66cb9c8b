package model

// StatisticCounter holds per-status counts. Total is always the sum of the
// five status fields.
type StatisticCounter struct {
	Failed  int `json:"failed"`
	Broken  int `json:"broken"`
	Skipped int `json:"skipped"`
	Passed  int `json:"passed"`
	Unknown int `json:"unknown"`
	Total   int `json:"total"`
}

// DeltaFor returns a one-hot counter for status.
func DeltaFor(status Status) StatisticCounter {
	var delta StatisticCounter

	switch status {
	case StatusFailed:
		delta.Failed = 1
	case StatusBroken:
		delta.Broken = 1
	case StatusSkipped:
		delta.Skipped = 1
	case StatusPassed:
		delta.Passed = 1
	default:
		delta.Unknown = 1
	}

	delta.Recompute()

	return delta
}

// Add adds every status field of delta and recomputes Total.
func (c *StatisticCounter) Add(delta StatisticCounter) {
	c.Failed += delta.Failed
	c.Broken += delta.Broken
	c.Skipped += delta.Skipped
	c.Passed += delta.Passed
	c.Unknown += delta.Unknown
	c.Recompute()
}

// Sub subtracts every status field of delta and recomputes Total.
func (c *StatisticCounter) Sub(delta StatisticCounter) {
	c.Failed -= delta.Failed
	c.Broken -= delta.Broken
	c.Skipped -= delta.Skipped
	c.Passed -= delta.Passed
	c.Unknown -= delta.Unknown
	c.Recompute()
}

// Recompute restores the Total invariant.
func (c *StatisticCounter) Recompute() {
	c.Total = c.Failed + c.Broken + c.Skipped + c.Passed + c.Unknown
}

// Consistent reports whether Total matches the status fields.
func (c StatisticCounter) Consistent() bool {
	return c.Total == c.Failed+c.Broken+c.Skipped+c.Passed+c.Unknown
}
