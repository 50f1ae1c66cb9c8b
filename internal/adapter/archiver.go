package adapter

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

// ArchiveExt is appended to the consolidated directory name.
const ArchiveExt = ".tar.zst"

// Archiver packs a directory into a single file.
type Archiver interface {
	Archive(ctx context.Context, src, dst m.Path) error
}

// ZstdArchiver writes zstd-compressed tarballs.
type ZstdArchiver struct {
	level zstd.EncoderLevel
}

// NewZstdArchiver creates a ZstdArchiver using the default compression level.
func NewZstdArchiver() *ZstdArchiver {
	return &ZstdArchiver{level: zstd.SpeedDefault}
}

// Archive implements Archiver. Entry names are relative to the parent of src,
// so the archive unpacks into a directory named like src.
func (a *ZstdArchiver) Archive(ctx context.Context, src, dst m.Path) (err error) {
	// #nosec G304 - dst is derived from the configured output directory
	out, err := os.Create(string(dst))
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	defer func() { err = errors.Join(err, out.Close()) }()

	encoder, err := zstd.NewWriter(out, zstd.WithEncoderLevel(a.level))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}

	defer func() { err = errors.Join(err, encoder.Close()) }()

	tarWriter := tar.NewWriter(encoder)

	defer func() { err = errors.Join(err, tarWriter.Close()) }()

	base := filepath.Dir(string(src))

	return filepath.WalkDir(string(src), func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("write header %s: %w", rel, err)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		return copyInto(tarWriter, path)
	})
}

func copyInto(w io.Writer, path string) error {
	// #nosec G304 - path is produced by walking the consolidated output
	file, err := os.Open(path)
	if err != nil {
		return err
	}

	defer func() { _ = file.Close() }()

	_, err = io.Copy(w, file)

	return err
}
