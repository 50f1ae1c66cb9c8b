// Package adapter contains the infrastructure adapters used by the
// consolidation engine: filesystem access, report layout, JSON report store,
// ledger readers and archiving.
package adapter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// ReportFSAdapter abstracts filesystem operations the domain layer relies on
// when reading iteration exports and writing the consolidated report. It hides
// direct `os` access so the merge logic can be tested against fixtures.
//
//nolint:interfacebloat // A richer interface keeps domain logic decoupled from os/fs.
type ReportFSAdapter interface {
	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file, creating parent directories.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// FileInfo returns metadata for a path so callers can check existence or
	// distinguish between files and directories.
	FileInfo(path m.Path) (os.FileInfo, error)

	// ListDir returns the sorted names of the entries of dir.
	ListDir(dir m.Path) ([]string, error)

	// CopyFile copies a single file, creating parent directories of dst.
	CopyFile(src, dst m.Path) error

	// CopyDir recursively copies a directory tree, skipping the named
	// top-level entries of src.
	CopyDir(src, dst m.Path, skip ...string) error

	// Remove deletes a single file. Missing files are not an error.
	Remove(path m.Path) error

	// RemoveAll removes a directory and all its contents.
	RemoveAll(path m.Path) error

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// LocalReportFSAdapter is the os-backed ReportFSAdapter.
type LocalReportFSAdapter struct{}

// NewLocalReportFSAdapter constructs a LocalReportFSAdapter instance ready to
// be wired into the workflow.
func NewLocalReportFSAdapter() *LocalReportFSAdapter {
	return &LocalReportFSAdapter{}
}

// ReadFile loads file contents from disk.
func (a *LocalReportFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	// #nosec G304 - paths are resolved from the configured report layout
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalReportFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return err
	}

	return os.WriteFile(string(path), content, perm)
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalReportFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// ListDir returns the sorted entry names of dir.
func (a *LocalReportFSAdapter) ListDir(dir m.Path) ([]string, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	sort.Strings(names)

	return names, nil
}

// CopyFile copies a single file, keeping its mode.
func (a *LocalReportFSAdapter) CopyFile(src, dst m.Path) error {
	info, err := os.Stat(string(src))
	if err != nil {
		return err
	}

	if info.IsDir() {
		return fmt.Errorf("copy %s: is a directory", src)
	}

	return a.copyFile(string(src), string(dst), info.Mode())
}

// CopyDir recursively copies a directory tree.
func (a *LocalReportFSAdapter) CopyDir(src, dst m.Path, skip ...string) error {
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	return filepath.Walk(string(src), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(string(src), path)
		if err != nil {
			return err
		}

		if relPath != "." && skipped[filepath.ToSlash(relPath)] {
			if info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		targetPath := filepath.Join(string(dst), relPath)

		if info.IsDir() {
			return os.MkdirAll(targetPath, 0o750)
		}

		return a.copyFile(path, targetPath, info.Mode())
	})
}

// copyFile copies a single file.
func (a *LocalReportFSAdapter) copyFile(src, dst string, mode os.FileMode) error {
	// #nosec G304 - src comes from the iteration layout, not user input
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	// #nosec G304 - dst is inside the consolidated output directory
	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		_ = destFile.Close()
		return err
	}

	if err := destFile.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}

	return os.Chmod(dst, mode)
}

// Remove deletes a single file.
func (a *LocalReportFSAdapter) Remove(path m.Path) error {
	err := os.Remove(string(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

// RemoveAll removes a directory and all its contents.
func (a *LocalReportFSAdapter) RemoveAll(path m.Path) error {
	return os.RemoveAll(string(path))
}

// JoinPath joins path elements into a single path.
func (a *LocalReportFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
