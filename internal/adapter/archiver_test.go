package adapter

import (
	"archive/tar"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "allmerge.dev/pkg/allmerge/internal/model"
)

func TestZstdArchiver_RoundTrip(t *testing.T) {
	fs := NewLocalReportFSAdapter()
	root := t.TempDir()
	src := filepath.Join(root, "ConsolidatedReport")

	require.NoError(t, fs.WriteFile(fs.JoinPath(src, "consolidation.json"), []byte(`{"runId":"x"}`), 0o644))
	require.NoError(t, fs.WriteFile(fs.JoinPath(src, "allure-report", "data", "suites.json"), []byte(`{}`), 0o644))

	dst := filepath.Join(root, "ConsolidatedReport"+ArchiveExt)
	require.NoError(t, NewZstdArchiver().Archive(context.Background(), m.Path(src), m.Path(dst)))

	file, err := os.Open(dst)
	require.NoError(t, err)
	defer file.Close()

	decoder, err := zstd.NewReader(file)
	require.NoError(t, err)
	defer decoder.Close()

	contents := map[string]string{}
	reader := tar.NewReader(decoder)

	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		if header.Typeflag == tar.TypeReg {
			data, err := io.ReadAll(reader)
			require.NoError(t, err)
			contents[header.Name] = string(data)
		}
	}

	assert.Equal(t, map[string]string{
		"ConsolidatedReport/consolidation.json":             `{"runId":"x"}`,
		"ConsolidatedReport/allure-report/data/suites.json": `{}`,
	}, contents)
}

func TestZstdArchiver_CancelledContext(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewZstdArchiver().Archive(ctx, m.Path(src), m.Path(filepath.Join(root, "out.tar.zst")))
	require.ErrorIs(t, err, context.Canceled)
}
