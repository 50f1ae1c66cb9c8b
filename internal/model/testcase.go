package model

import "encoding/json"

// TestCaseRecord is the registry's view of one test case in the consolidated
// report.
type TestCaseRecord struct {
	ID         string
	Name       string
	Status     Status
	Document   json.RawMessage
	TestClass  string
	OriginFile Path
	RunID      string
}

// Attachment references a file stored next to a test-case document.
type Attachment struct {
	UID    string
	Name   string
	Source string
}
