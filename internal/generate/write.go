package generate

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/fsutil"
	"github.com/Leenie/ansible-universe/internal/layout"
)

// WriteResult reports what happened to each generated file, by relative path.
type WriteResult struct {
	Written  []string `json:"written,omitempty"`
	UpToDate []string `json:"up_to_date,omitempty"`
	Excluded []string `json:"excluded,omitempty"`
}

// Changed reports whether any file was rewritten.
func (r WriteResult) Changed() bool {
	return len(r.Written) > 0
}

// Write stores the artifacts under root. Files whose content is already
// current are left untouched and excluded paths are never written.
func Write(root string, a Artifacts, excludes layout.Excludes) (WriteResult, error) {
	var res WriteResult
	for _, f := range []struct {
		rel  string
		data []byte
	}{
		{constants.AggregationPath, a.Aggregation},
		{constants.DescriptionPath, a.Description},
	} {
		if excludes.Match(f.rel) {
			res.Excluded = append(res.Excluded, f.rel)
			continue
		}
		changed, err := fsutil.WriteIfChanged(filepath.Join(root, f.rel), f.data)
		if err != nil {
			return res, uerrors.Tag(uerrors.ErrGenerationIO, err, f.rel)
		}
		if changed {
			res.Written = append(res.Written, f.rel)
		} else {
			res.UpToDate = append(res.UpToDate, f.rel)
		}
	}
	return res, nil
}

// Clean removes the generated files, and the distribution directory when all
// is set. Excluded paths are kept. It returns the removed relative paths.
func Clean(root string, excludes layout.Excludes, all bool) ([]string, error) {
	targets := []string{constants.AggregationPath, constants.DescriptionPath}
	if all {
		targets = append(targets, constants.DistDir)
	}

	var removed []string
	for _, rel := range targets {
		if excludes.Match(rel) {
			continue
		}
		path := filepath.Join(root, rel)
		if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			return removed, uerrors.Tag(uerrors.ErrGenerationIO, err, "remove "+rel)
		}
		removed = append(removed, rel)
	}
	return removed, nil
}
