package model

// LedgerSheet is one sheet of the execution ledger: the final status of every
// retained test case for one run.
type LedgerSheet struct {
	RunID    string
	Statuses map[string]Status
}

// LedgerEntry is a single (run, test case) override.
type LedgerEntry struct {
	RunID      string
	TestCaseID string
	Status     Status
}
