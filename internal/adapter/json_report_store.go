package adapter

import (
	"encoding/json"
	"errors"
	"fmt"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// ErrMalformedDocument is returned for files that are not valid JSON documents
// of the expected shape.
var ErrMalformedDocument = errors.New("malformed report document")

const reportFilePerm = 0o640

// ReportStore reads exported report artifacts and writes consolidated ones.
type ReportStore interface {
	// ReadTree decodes a taxonomy tree (behaviors.json, suites.json, ...).
	ReadTree(path m.Path) (*m.HierarchyNode, error)
	// ReadDocument returns the raw bytes of a JSON document after validating them.
	ReadDocument(path m.Path) ([]byte, error)
	// ReadWidget decodes a statistics widget.
	ReadWidget(path m.Path) (m.Widget, error)
	// ReadJSON decodes any JSON document into value.
	ReadJSON(path m.Path, value any) error
	// WriteJSON encodes value to path.
	WriteJSON(path m.Path, value any) error
	// WriteDocument writes an already encoded document to path.
	WriteDocument(path m.Path, document []byte) error
}

// JSONReportStore is the ReportStore backed by a ReportFSAdapter.
type JSONReportStore struct {
	fs ReportFSAdapter
}

// NewJSONReportStore creates a JSONReportStore.
func NewJSONReportStore(fs ReportFSAdapter) *JSONReportStore {
	return &JSONReportStore{fs: fs}
}

// ReadTree implements ReportStore.
func (s *JSONReportStore) ReadTree(path m.Path) (*m.HierarchyNode, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var root m.HierarchyNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedDocument, path, err)
	}

	if root.IsLeaf() {
		return nil, fmt.Errorf("%w: %s: root has no children", ErrMalformedDocument, path)
	}

	return &root, nil
}

// ReadDocument implements ReportStore.
func (s *JSONReportStore) ReadDocument(path m.Path) ([]byte, error) {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrMalformedDocument, path)
	}

	return data, nil
}

// ReadWidget implements ReportStore.
func (s *JSONReportStore) ReadWidget(path m.Path) (m.Widget, error) {
	var widget m.Widget
	if err := s.ReadJSON(path, &widget); err != nil {
		return m.Widget{}, err
	}

	return widget, nil
}

// ReadJSON implements ReportStore.
func (s *JSONReportStore) ReadJSON(path m.Path, value any) error {
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedDocument, path, err)
	}

	return nil
}

// WriteJSON implements ReportStore.
func (s *JSONReportStore) WriteJSON(path m.Path, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return s.WriteDocument(path, data)
}

// WriteDocument implements ReportStore.
func (s *JSONReportStore) WriteDocument(path m.Path, document []byte) error {
	if err := s.fs.WriteFile(path, document, reportFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
