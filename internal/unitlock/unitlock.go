// Package unitlock serializes universe processes working on the same unit.
//
// The lock is an advisory, non-blocking exclusive lock on a file at the unit
// root. It is released by Release or when the process exits.
package unitlock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// Lock is a held unit lock.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes the lock for the unit rooted at root. It fails immediately
// with ErrUnitLocked when another process holds it.
func Acquire(root string) (*Lock, error) {
	path := filepath.Join(root, constants.LockFileName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //#nosec G304 -- lock path is derived from the unit root
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", uerrors.ErrUnitLocked, path)
	}

	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{file: f, path: path}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. The lock file stays in place so every process
// contends on the same inode; its pid is cleared first. It is safe to call
// more than once.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil

	_ = f.Truncate(0)
	unlockErr := unlock(f.Fd())
	closeErr := f.Close()

	switch {
	case unlockErr != nil:
		return fmt.Errorf("unlock: %w", unlockErr)
	case closeErr != nil:
		return fmt.Errorf("close lock file: %w", closeErr)
	}
	return nil
}
