// Package pack writes a unit's files into a reproducible gzip-compressed tar
// archive.
package pack

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/fsutil"
)

// ArchiveExt is the archive file extension.
const ArchiveExt = ".tgz"

//nolint:gochecknoglobals // fixed timestamp for reproducible archives
var epoch = time.Unix(0, 0).UTC()

// ArchiveName returns the archive file name for a unit version.
func ArchiveName(name, version string) string {
	return name + "-" + version + ArchiveExt
}

// ArchivePath returns the archive location inside the unit.
func ArchivePath(root, name, version string) string {
	return filepath.Join(root, constants.DistDir, ArchiveName(name, version))
}

// Result describes a packaging run.
type Result struct {
	Path   string `json:"path"`
	Files  int    `json:"files"`
	Bytes  int    `json:"bytes"`
	SHA256 string `json:"sha256"`

	// Written is false when an identical archive already existed.
	Written bool `json:"written"`
}

// Packager builds archives.
type Packager struct{}

// NewPackager creates a Packager.
func NewPackager() *Packager {
	return &Packager{}
}

// Package archives files (slash-separated, relative to root) into dest.
// Entries are sorted and carry fixed ownership and timestamps, so the same
// tree always yields the same bytes. An identical existing archive is kept.
func (p *Packager) Package(ctx context.Context, root string, files []string, dest string) (*Result, error) {
	log := zerolog.Ctx(ctx).With().Str("component", "pack").Logger()

	data, err := Build(ctx, root, files)
	if err != nil {
		return nil, err
	}

	written, err := fsutil.WriteIfChanged(dest, data)
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrPackageFailed, err, "write "+filepath.Base(dest))
	}

	sum := sha256.Sum256(data)
	res := &Result{
		Path:    dest,
		Files:   len(files),
		Bytes:   len(data),
		SHA256:  hex.EncodeToString(sum[:]),
		Written: written,
	}
	log.Info().
		Str("archive", dest).
		Int("files", res.Files).
		Int("bytes", res.Bytes).
		Bool("written", written).
		Msg("package complete")
	return res, nil
}

// Build returns the archive bytes for files under root.
func Build(ctx context.Context, root string, files []string) ([]byte, error) {
	sorted := slices.Clone(files)
	slices.Sort(sorted)

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrPackageFailed, err, "init gzip")
	}
	tw := tar.NewWriter(gz)

	dirs := make(map[string]bool)
	for _, rel := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeParents(tw, dirs, path.Dir(rel)); err != nil {
			return nil, uerrors.Tag(uerrors.ErrPackageFailed, err, rel)
		}
		if err := writeFile(tw, root, rel); err != nil {
			return nil, uerrors.Tag(uerrors.ErrPackageFailed, err, rel)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, uerrors.Tag(uerrors.ErrPackageFailed, err, "close tar")
	}
	if err := gz.Close(); err != nil {
		return nil, uerrors.Tag(uerrors.ErrPackageFailed, err, "close gzip")
	}
	return buf.Bytes(), nil
}

// writeParents emits directory entries for dir and its ancestors, once each.
func writeParents(tw *tar.Writer, seen map[string]bool, dir string) error {
	if dir == "." || dir == "" || seen[dir] {
		return nil
	}
	if err := writeParents(tw, seen, path.Dir(dir)); err != nil {
		return err
	}
	seen[dir] = true
	return tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeDir,
		Name:     dir + "/",
		Mode:     0o755,
		ModTime:  epoch,
		Format:   tar.FormatPAX,
	})
}

func writeFile(tw *tar.Writer, root, rel string) error {
	full := filepath.Join(root, filepath.FromSlash(rel))
	f, err := os.Open(full) //#nosec G304 -- rel comes from a walk of the unit root
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not a regular file")
	}

	mode := int64(0o644)
	if info.Mode().Perm()&0o111 != 0 {
		mode = 0o755
	}
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     rel,
		Mode:     mode,
		Size:     info.Size(),
		ModTime:  epoch,
		Format:   tar.FormatPAX,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}
