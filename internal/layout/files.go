package layout

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// Excludes is a set of slash-separated glob patterns relative to the unit root.
// A pattern matching a directory excludes everything below it.
type Excludes []string

// Validate reports the first malformed pattern.
func (e Excludes) Validate() error {
	for _, p := range e {
		if !doublestar.ValidatePattern(p) {
			return uerrors.Tag(uerrors.ErrConfigInvalid, nil, "exclude pattern "+p)
		}
	}
	return nil
}

// Match reports whether the relative path rel is excluded.
func (e Excludes) Match(rel string) bool {
	rel = filepath.ToSlash(filepath.Clean(rel))
	for _, p := range e {
		p = strings.TrimSuffix(filepath.ToSlash(p), "/")
		for candidate := rel; candidate != "." && candidate != ""; candidate = parent(candidate) {
			if ok, _ := doublestar.Match(p, candidate); ok {
				return true
			}
		}
	}
	return false
}

func parent(rel string) string {
	i := strings.LastIndex(rel, "/")
	if i < 0 {
		return ""
	}
	return rel[:i]
}

// Files lists the regular files of the unit relative to root, slash
// separated and sorted. The distribution directory, the lock file, hidden
// entries and excluded paths are skipped.
func Files(root string, excludes Excludes) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		base := d.Name()

		skip := strings.HasPrefix(base, ".") || rel == constants.DistDir || excludes.Match(rel)
		if d.IsDir() {
			if skip {
				return filepath.SkipDir
			}
			return nil
		}
		if skip || !d.Type().IsRegular() {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrUnreadableLayout, err, "walk unit tree")
	}
	slices.Sort(files)
	return files, nil
}
