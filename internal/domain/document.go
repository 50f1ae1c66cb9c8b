package domain

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"allmerge.dev/pkg/allmerge/internal/adapter"
	m "allmerge.dev/pkg/allmerge/internal/model"
)

const (
	featureLabel   = "feature"
	severityLabel  = "severity"
	testClassLabel = "testClass"

	defaultSeverity = "normal"
)

// testCaseDocument is a read view over a raw per-test-case JSON document. The
// raw bytes are what gets archived; fields are read through JSON paths.
type testCaseDocument struct {
	raw  []byte
	path m.Path
}

func parseTestCaseDocument(raw []byte, path m.Path) (testCaseDocument, error) {
	if !gjson.ValidBytes(raw) {
		return testCaseDocument{}, fmt.Errorf("invalid JSON in %s", path)
	}

	doc := testCaseDocument{raw: raw, path: path}
	if doc.UID() == "" {
		return testCaseDocument{}, fmt.Errorf("document %s has no uid", path)
	}

	if !adapter.IsPlainName(doc.UID()) {
		return testCaseDocument{}, fmt.Errorf("document %s has uid %q that is not a plain file name", path, doc.UID())
	}

	return doc, nil
}

func (d testCaseDocument) get(path string) gjson.Result {
	return gjson.GetBytes(d.raw, path)
}

func (d testCaseDocument) UID() string {
	return d.get("uid").String()
}

func (d testCaseDocument) Name() string {
	return d.get("name").String()
}

func (d testCaseDocument) Status() m.Status {
	status, ok := m.ParseStatus(d.get("status").String())
	if !ok {
		return m.StatusUnknown
	}

	return status
}

// Label returns the value of the first label called name.
func (d testCaseDocument) Label(name string) string {
	return d.get(fmt.Sprintf(`labels.#(name==%q).value`, name)).String()
}

// IsPrecondition reports whether the document carries feature=Precondition.
func (d testCaseDocument) IsPrecondition() bool {
	return strings.TrimSpace(d.Label(featureLabel)) == m.PreconditionName
}

// TestClass returns the testClass label, empty when absent.
func (d testCaseDocument) TestClass() string {
	return d.Label(testClassLabel)
}

func (d testCaseDocument) Severity() string {
	if severity := d.Label(severityLabel); severity != "" {
		return severity
	}

	return defaultSeverity
}

func (d testCaseDocument) Time() m.TimeSpan {
	return m.TimeSpan{
		Start:    d.get("time.start").Int(),
		Stop:     d.get("time.stop").Int(),
		Duration: d.get("time.duration").Int(),
	}
}

// Attachments lists every attachment of the test stage, including those of
// nested steps, followed by the fixture stages.
func (d testCaseDocument) Attachments() []m.Attachment {
	var attachments []m.Attachment

	attachments = collectStageAttachments(d.get("testStage"), attachments)

	for _, stage := range []string{"beforeStages", "afterStages"} {
		for _, fixture := range d.get(stage).Array() {
			attachments = collectStageAttachments(fixture, attachments)
		}
	}

	return attachments
}

func collectStageAttachments(stage gjson.Result, attachments []m.Attachment) []m.Attachment {
	if !stage.Exists() {
		return attachments
	}

	for _, attachment := range stage.Get("attachments").Array() {
		source := attachment.Get("source").String()
		if source == "" {
			continue
		}

		attachments = append(attachments, m.Attachment{
			UID:    attachment.Get("uid").String(),
			Name:   attachment.Get("name").String(),
			Source: source,
		})
	}

	for _, step := range stage.Get("steps").Array() {
		attachments = collectStageAttachments(step, attachments)
	}

	return attachments
}

// WithStatus returns a copy of the document whose status is replaced.
func (d testCaseDocument) WithStatus(status m.Status) ([]byte, error) {
	if d.Status() == status {
		return d.raw, nil
	}

	updated, err := sjson.SetBytes(d.raw, "status", string(status))
	if err != nil {
		return nil, fmt.Errorf("rewrite status of %s: %w", d.path, err)
	}

	return updated, nil
}
