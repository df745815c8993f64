package pack

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

func writeTestFile(t *testing.T, root, rel, content string, mode os.FileMode) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), mode))
}

func entries(t *testing.T, data []byte) map[string]*tar.Header {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	out := make(map[string]*tar.Header)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out[hdr.Name] = hdr
	}
	return out
}

func TestArchiveName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "web-1.0.0.tgz", ArchiveName("web", "1.0.0"))
	assert.Equal(t, filepath.Join("/u", "dist", "web-1.0.0.tgz"), ArchivePath("/u", "web", "1.0.0"))
}

func TestBuild_Reproducible(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTestFile(t, root, "meta/main.yml", "version: 1\n", 0o600)
	writeTestFile(t, root, "tasks/main.yml", "[]\n", 0o600)
	writeTestFile(t, root, "files/run.sh", "#!/bin/sh\n", 0o700)

	files := []string{"tasks/main.yml", "meta/main.yml", "files/run.sh"}
	first, err := Build(context.Background(), root, files)
	require.NoError(t, err)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "meta/main.yml"), later, later))

	second, err := Build(context.Background(), root, []string{"files/run.sh", "meta/main.yml", "tasks/main.yml"})
	require.NoError(t, err)
	assert.Equal(t, first, second, "order and mtimes do not affect the archive")

	got := entries(t, first)
	require.Contains(t, got, "meta/")
	require.Contains(t, got, "meta/main.yml")
	require.Contains(t, got, "files/run.sh")
	assert.Equal(t, int64(0o755), got["files/run.sh"].Mode)
	assert.Equal(t, int64(0o644), got["meta/main.yml"].Mode)
	assert.Equal(t, 0, got["meta/main.yml"].Uid)
	assert.True(t, got["meta/main.yml"].ModTime.Equal(time.Unix(0, 0)))
}

func TestPackage_WritesOnce(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTestFile(t, root, "meta/main.yml", "x", 0o600)
	dest := ArchivePath(root, "web", "0.0.1")
	p := NewPackager()

	res, err := p.Package(context.Background(), root, []string{"meta/main.yml"}, dest)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, 1, res.Files)
	assert.Len(t, res.SHA256, 64)
	assert.FileExists(t, dest)

	again, err := p.Package(context.Background(), root, []string{"meta/main.yml"}, dest)
	require.NoError(t, err)
	assert.False(t, again.Written)
	assert.Equal(t, res.SHA256, again.SHA256)
}

func TestBuild_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Build(context.Background(), t.TempDir(), []string{"nope.yml"})
	require.ErrorIs(t, err, uerrors.ErrPackageFailed)
}
