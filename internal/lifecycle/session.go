package lifecycle

import (
	"fmt"
	"path/filepath"

	"github.com/Leenie/ansible-universe/internal/constants"
	"github.com/Leenie/ansible-universe/internal/layout"
	"github.com/Leenie/ansible-universe/internal/manifest"
)

// Options are the per-invocation settings targets read.
type Options struct {
	// Kind selects the layout allow-list (role or composition).
	Kind string

	Excludes   layout.Excludes
	Repository string

	// Rules lists the rule ids check evaluates. Nil selects the defaults.
	Rules []string

	// CleanAll makes distclean remove the distribution directory too.
	CleanAll bool
}

// Session owns the unit snapshot for one invocation. The manifest and layout
// are loaded on first use and kept until Invalidate.
type Session struct {
	Root string
	Options

	manifest *manifest.Manifest
	layout   *layout.Layout
	loads    int
	scans    int
}

// NewSession creates a session for the unit rooted at root.
func NewSession(root string, opts Options) (*Session, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve unit root: %w", err)
	}
	if opts.Kind == "" {
		opts.Kind = constants.KindRole
	}
	return &Session{Root: abs, Options: opts}, nil
}

// Manifest returns the manifest snapshot, loading it if needed.
func (s *Session) Manifest() (*manifest.Manifest, error) {
	if s.manifest == nil {
		m, err := manifest.Load(s.Root)
		if err != nil {
			return nil, err
		}
		s.manifest = m
		s.loads++
	}
	return s.manifest, nil
}

// Layout returns the layout snapshot, scanning if needed.
func (s *Session) Layout() (*layout.Layout, error) {
	if s.layout == nil {
		l, err := layout.Scan(s.Root)
		if err != nil {
			return nil, err
		}
		s.layout = l
		s.scans++
	}
	return s.layout, nil
}

// Snapshot returns both views.
func (s *Session) Snapshot() (*manifest.Manifest, *layout.Layout, error) {
	m, err := s.Manifest()
	if err != nil {
		return nil, nil, err
	}
	l, err := s.Layout()
	if err != nil {
		return nil, nil, err
	}
	return m, l, nil
}

// Invalidate drops the snapshot so the next access reads the tree again.
func (s *Session) Invalidate() {
	s.manifest = nil
	s.layout = nil
}

// Scans returns how many times the layout was scanned.
func (s *Session) Scans() int {
	return s.scans
}

// Loads returns how many times the manifest was loaded.
func (s *Session) Loads() int {
	return s.loads
}
