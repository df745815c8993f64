package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/fsutil"
	"github.com/Leenie/ansible-universe/internal/generate"
	"github.com/Leenie/ansible-universe/internal/layout"
	"github.com/Leenie/ansible-universe/internal/lint"
	"github.com/Leenie/ansible-universe/internal/manifest"
	"github.com/Leenie/ansible-universe/internal/pack"
	"github.com/Leenie/ansible-universe/internal/publish"
	"github.com/Leenie/ansible-universe/internal/syntax"
)

// Linter evaluates rules against a unit.
type Linter interface {
	Evaluate(ctx context.Context, c *lint.Context, ids []string) (*lint.Result, error)
}

// SyntaxChecker validates a unit with the runtime's syntax checker.
type SyntaxChecker interface {
	Check(ctx context.Context, root, name string) (*syntax.Result, error)
}

// Packager writes the unit archive.
type Packager interface {
	Package(ctx context.Context, root string, files []string, dest string) (*pack.Result, error)
}

// Publisher uploads an archive.
type Publisher interface {
	Publish(ctx context.Context, archivePath, endpoint string) (*publish.Result, error)
}

// Deps are the collaborators the built-in targets call.
type Deps struct {
	Linter Linter

	// Syntax may be nil, in which case check only lints.
	Syntax SyntaxChecker

	Packager  Packager
	Publisher Publisher
}

// Summary is the report of the show target.
type Summary struct {
	Manifest       *manifest.Manifest        `json:"manifest"`
	Variables      []generate.CatalogueEntry `json:"variables"`
	Subdirectories []string                  `json:"subdirectories"`
	TaskFiles      []string                  `json:"task_files"`
	ArchivePath    string                    `json:"archive_path"`

	// Readme is the description file as dist would generate it.
	Readme []byte `json:"-"`
}

// Scaffold stubs written by init, relative to the unit root. Directories get
// no stub file.
//
//nolint:gochecknoglobals // read-only layout table
var scaffold = []struct {
	dir  string
	stub bool
}{
	{"defaults", true},
	{"files", false},
	{"handlers", true},
	{"meta", false},
	{"tasks", false},
	{"templates", false},
	{"vars", true},
}

// Builtin returns the fixed target graph: publish requires package, package
// requires check and check requires dist. init, show and distclean stand alone.
func Builtin(d Deps) []Target {
	return []Target{
		{
			Name:        TargetInit,
			Description: "Create the unit skeleton and a starter manifest",
			Mutates:     true,
			Action:      initAction,
		},
		{
			Name:        TargetShow,
			Description: "Summarize the manifest and layout",
			Action:      showAction,
		},
		{
			Name:        TargetDist,
			Description: "Generate tasks/main.yml and README.md",
			Mutates:     true,
			Action:      distAction,
		},
		{
			Name:          TargetCheck,
			Description:   "Lint the unit and run the syntax checker",
			Prerequisites: []string{TargetDist},
			Action:        checkAction(d),
		},
		{
			Name:          TargetPackage,
			Description:   "Build dist/<name>-<version>.tgz",
			Prerequisites: []string{TargetCheck},
			Mutates:       true,
			Action:        packageAction(d),
		},
		{
			Name:          TargetPublish,
			Description:   "Upload the archive to the repository",
			Prerequisites: []string{TargetPackage},
			Action:        publishAction(d),
		},
		{
			Name:        TargetDistclean,
			Description: "Remove generated files (and dist/ with --all)",
			Mutates:     true,
			Destructive: true,
			Action:      distcleanAction,
		},
	}
}

// NewDefault builds an engine over the built-in targets.
func NewDefault(d Deps) (*Engine, error) {
	return New(Builtin(d)...)
}

func initAction(ctx context.Context, s *Session, _ Input) (Outcome, error) {
	log := zerolog.Ctx(ctx)
	var created []string

	for _, entry := range scaffold {
		dir := filepath.Join(s.Root, entry.dir)
		if !fsutil.Exists(dir) {
			if err := os.MkdirAll(dir, fsutil.DirPerm); err != nil {
				return Outcome{}, uerrors.Tag(uerrors.ErrGenerationIO, err, "create "+entry.dir)
			}
			created = append(created, entry.dir+"/")
		}
		if !entry.stub {
			continue
		}
		stub := filepath.Join(dir, constants.MainFileName)
		if fsutil.Exists(stub) {
			continue
		}
		if err := fsutil.AtomicWrite(stub, []byte("---\n")); err != nil {
			return Outcome{}, uerrors.Tag(uerrors.ErrGenerationIO, err, entry.dir+"/"+constants.MainFileName)
		}
		created = append(created, entry.dir+"/"+constants.MainFileName)
	}

	if !manifest.Exists(s.Root) {
		if err := manifest.Skeleton(filepath.Base(s.Root)).Save(s.Root); err != nil {
			return Outcome{}, err
		}
		created = append(created, filepath.ToSlash(constants.ManifestPath))
	} else {
		m, err := manifest.Load(s.Root)
		if err != nil {
			return Outcome{}, err
		}
		if m.VersionDefaulted {
			if err := m.WithVersion(constants.DefaultUnitVersion).Save(s.Root); err != nil {
				return Outcome{}, err
			}
			created = append(created, "version "+constants.DefaultUnitVersion+" in "+filepath.ToSlash(constants.ManifestPath))
		} else {
			log.Debug().Msg("manifest exists, leaving it untouched")
		}
	}

	if len(created) == 0 {
		return Outcome{UpToDate: true, Detail: "unit already initialized"}, nil
	}
	return Outcome{Detail: "created " + strings.Join(created, ", ")}, nil
}

func showAction(_ context.Context, s *Session, _ Input) (Outcome, error) {
	m, l, err := s.Snapshot()
	if err != nil {
		return Outcome{}, err
	}
	readme, err := generate.Description(m, l)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		UpToDate: true,
		Report: &Summary{
			Manifest:       m,
			Variables:      generate.Catalogue(m, l),
			Subdirectories: l.Subdirectories,
			TaskFiles:      l.TaskFiles,
			ArchivePath:    pack.ArchivePath(s.Root, m.Name, m.Version),
			Readme:         readme,
		},
	}, nil
}

func distAction(ctx context.Context, s *Session, _ Input) (Outcome, error) {
	m, l, err := s.Snapshot()
	if err != nil {
		return Outcome{}, err
	}
	artifacts, err := generate.Generate(m, l)
	if err != nil {
		return Outcome{}, err
	}
	res, err := generate.Write(s.Root, artifacts, s.Excludes)
	if err != nil {
		return Outcome{}, err
	}
	zerolog.Ctx(ctx).Debug().
		Strs("written", res.Written).
		Strs("up_to_date", res.UpToDate).
		Strs("excluded", res.Excluded).
		Msg("artifacts generated")

	if !res.Changed() {
		return Outcome{UpToDate: true, Detail: "generated files are current"}, nil
	}
	return Outcome{Detail: "wrote " + strings.Join(res.Written, ", ")}, nil
}

func checkAction(d Deps) Action {
	return func(ctx context.Context, s *Session, _ Input) (Outcome, error) {
		m, l, err := s.Snapshot()
		if err != nil {
			return Outcome{}, err
		}

		res, err := d.Linter.Evaluate(ctx, lint.NewContext(m, l, s.Kind), s.Rules)
		if err != nil {
			return Outcome{}, err
		}
		out := Outcome{
			Diagnostics: res.Diagnostics,
			Detail: fmt.Sprintf("%d error(s), %d warning(s)",
				res.Count(lint.SeverityError), res.Count(lint.SeverityWarning)),
		}
		if !res.Passed {
			return out, fmt.Errorf("%w: %s", uerrors.ErrLintFailed, out.Detail)
		}

		if d.Syntax == nil {
			return out, nil
		}
		sr, err := d.Syntax.Check(ctx, s.Root, m.Name)
		if err != nil {
			if sr != nil && len(sr.Locations) > 0 {
				locs := make([]string, len(sr.Locations))
				for i, loc := range sr.Locations {
					locs[i] = loc.String()
				}
				out.Detail += "; syntax errors at " + strings.Join(locs, ", ")
			}
			return out, uerrors.Tag(uerrors.ErrTargetAction, err, "syntax check")
		}
		out.Detail += "; syntax ok"
		return out, nil
	}
}

// packageAction reports an identical archive as up to date only when no
// prerequisite changed the tree; a forced run says the archive was rebuilt.
func packageAction(d Deps) Action {
	return func(ctx context.Context, s *Session, in Input) (Outcome, error) {
		m, err := s.Manifest()
		if err != nil {
			return Outcome{}, err
		}
		files, err := layout.Files(s.Root, s.Excludes)
		if err != nil {
			return Outcome{}, err
		}
		dest := pack.ArchivePath(s.Root, m.Name, m.Version)
		res, err := d.Packager.Package(ctx, s.Root, files, dest)
		if err != nil {
			return Outcome{}, uerrors.Tag(uerrors.ErrTargetAction, err, "package")
		}
		rel, _ := filepath.Rel(s.Root, res.Path)
		switch {
		case !res.Written && !in.Forced:
			return Outcome{UpToDate: true, Detail: filepath.ToSlash(rel) + " is current", Report: res}, nil
		case !res.Written:
			return Outcome{Detail: fmt.Sprintf("rebuilt %s after changes upstream, content unchanged", filepath.ToSlash(rel)), Report: res}, nil
		}
		return Outcome{Detail: fmt.Sprintf("wrote %s (%d files)", filepath.ToSlash(rel), res.Files), Report: res}, nil
	}
}

func publishAction(d Deps) Action {
	return func(ctx context.Context, s *Session, _ Input) (Outcome, error) {
		if strings.TrimSpace(s.Repository) == "" {
			return Outcome{}, uerrors.ErrNoRepository
		}
		m, err := s.Manifest()
		if err != nil {
			return Outcome{}, err
		}
		archive := pack.ArchivePath(s.Root, m.Name, m.Version)
		if _, err := os.Stat(archive); errors.Is(err, fs.ErrNotExist) {
			return Outcome{}, fmt.Errorf("%w: %s", uerrors.ErrArchiveMissing, filepath.Base(archive))
		}
		res, err := d.Publisher.Publish(ctx, archive, s.Repository)
		if err != nil {
			return Outcome{}, uerrors.Tag(uerrors.ErrTargetAction, err, "publish")
		}
		return Outcome{Detail: "uploaded to " + res.URL, Report: res}, nil
	}
}

func distcleanAction(_ context.Context, s *Session, _ Input) (Outcome, error) {
	removed, err := generate.Clean(s.Root, s.Excludes, s.CleanAll)
	if err != nil {
		return Outcome{}, err
	}
	if len(removed) == 0 {
		return Outcome{UpToDate: true, Detail: "nothing to remove"}, nil
	}
	return Outcome{Detail: "removed " + strings.Join(removed, ", ")}, nil
}
