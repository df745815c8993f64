// Package layout scans the on-disk tree of a unit and exposes read-only views
// over it: subdirectories, task files, parsed tasks, defaults and variable usages.
//
// Import rules:
//   - CAN import: internal/constants, internal/errors
//   - MUST NOT import: internal/manifest, internal/lint, internal/lifecycle, internal/cli
package layout

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// Layout is a snapshot of the unit tree at scan time.
type Layout struct {
	Root string `json:"root"`

	// Subdirectories lists top-level directories, sorted. Version-control
	// metadata and the distribution directory are not part of the unit and are
	// omitted; other hidden directories are listed.
	Subdirectories []string `json:"subdirectories"`

	// TaskFiles lists task-definition files under tasks/, sorted, excluding the
	// generated aggregation file.
	TaskFiles []string `json:"task_files"`

	Tasks    []Task      `json:"tasks"`
	Defaults []Default   `json:"defaults,omitempty"`
	Usages   []Usage     `json:"usages,omitempty"`
	Problems []FileError `json:"problems,omitempty"`
}

// FileError records a file that exists but could not be parsed. Parse failures
// are reported by the linter rather than failing the scan.
type FileError struct {
	File string `json:"file"`
	Err  string `json:"error"`
}

// Scan reads the unit rooted at root. It fails with uerrors.ErrUnreadableLayout
// on I/O errors only; missing areas yield empty views.
func Scan(root string) (*Layout, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrUnreadableLayout, err, "resolve unit root")
	}

	l := &Layout{Root: abs}

	if l.Subdirectories, err = scanSubdirectories(abs); err != nil {
		return nil, err
	}
	if l.TaskFiles, err = scanTaskFiles(abs); err != nil {
		return nil, err
	}
	for _, name := range l.TaskFiles {
		tasks, perr, err := readTaskFile(filepath.Join(abs, constants.TasksDir, name), name)
		if err != nil {
			return nil, err
		}
		if perr != nil {
			l.Problems = append(l.Problems, *perr)
			continue
		}
		l.Tasks = append(l.Tasks, tasks...)
	}

	defaults, perr, err := readDefaults(filepath.Join(abs, constants.DefaultsPath))
	if err != nil {
		return nil, err
	}
	if perr != nil {
		l.Problems = append(l.Problems, *perr)
	}
	l.Defaults = defaults
	l.Usages = collectUsages(l.Tasks)
	return l, nil
}

// HasTaskFile reports whether tasks/<name> exists and is not the aggregation file.
func (l *Layout) HasTaskFile(name string) bool {
	_, found := slices.BinarySearch(l.TaskFiles, name)
	return found
}

// Default returns the default value declared for name in defaults/main.yml.
func (l *Layout) Default(name string) (string, bool) {
	for _, d := range l.Defaults {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

func scanSubdirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrUnreadableLayout, err, "read unit root")
	}
	var dirs []string
	for _, e := range entries {
		if !isDir(root, e) {
			continue
		}
		name := e.Name()
		if slices.Contains(constants.VCSDirs, name) || name == constants.DistDir {
			continue
		}
		dirs = append(dirs, name)
	}
	slices.Sort(dirs)
	return dirs, nil
}

func scanTaskFiles(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, constants.TasksDir))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrUnreadableLayout, err, "read "+constants.TasksDir)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || name == constants.MainFileName {
			continue
		}
		if filepath.Ext(name) != constants.TaskFileExt {
			continue
		}
		files = append(files, name)
	}
	slices.Sort(files)
	return files, nil
}

// isDir follows symlinks so a linked subdirectory still counts as a directory.
func isDir(root string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := os.Stat(filepath.Join(root, e.Name()))
	return err == nil && info.IsDir()
}
