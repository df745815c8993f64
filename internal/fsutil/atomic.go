// Package fsutil holds small filesystem helpers shared by the writers of generated files.
package fsutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// FilePerm is the permission used for generated files. They are committed
// alongside user files, so they are world-readable.
const FilePerm = 0o644

// DirPerm is the permission used for directories created on behalf of the unit.
const DirPerm = 0o755

// AtomicWrite writes data to path using write-then-rename. The temporary file
// lives in the destination directory so the rename never crosses filesystems.
// A reader never observes a partially written file.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Chmod(tmpPath, FilePerm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// WriteIfChanged writes data only when the current content differs.
// It reports whether a write happened.
func WriteIfChanged(path string, data []byte) (bool, error) {
	current, err := os.ReadFile(path) //#nosec G304 -- path is constructed internally
	if err == nil && bytes.Equal(current, data) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read current content: %w", err)
	}
	if err := AtomicWrite(path, data); err != nil {
		return false, err
	}
	return true, nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
