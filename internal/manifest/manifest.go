// Package manifest provides the typed in-memory model of a unit's declarative
// metadata, read from the galaxy manifest meta/main.yml.
//
// Import rules:
//   - CAN import: internal/constants, internal/errors, internal/fsutil
//   - MUST NOT import: internal/layout, internal/lint, internal/lifecycle, internal/cli
package manifest

import (
	"slices"
)

// Platform is one supported (platform-name, version-range) pair.
type Platform struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions,omitempty"`
}

// Variable is one entry of the variable catalogue. Order of the catalogue is preserved.
type Variable struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Manifest is an immutable snapshot of the unit's metadata.
// Name and Version are always set after Load.
type Manifest struct {
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	SchemaVersion int               `json:"schema_version"`
	Authors       []string          `json:"authors,omitempty"`
	License       string            `json:"license,omitempty"`
	Description   string            `json:"description,omitempty"`
	Platforms     []Platform        `json:"platforms,omitempty"`
	Variables     []Variable        `json:"variables,omitempty"`
	Prefix        string            `json:"prefix"`
	IncludeWhen   map[string]string `json:"include_when,omitempty"`

	// Extra lists top-level keys this build does not interpret. They are kept
	// in the document and written back untouched by Save.
	Extra []string `json:"extra,omitempty"`

	// VersionDefaulted is true when the manifest did not declare a version.
	VersionDefaulted bool `json:"-"`

	path string
	doc  *document
}

// Path returns the file the manifest was loaded from.
func (m *Manifest) Path() string {
	return m.path
}

// Author returns the first author, or an empty string.
func (m *Manifest) Author() string {
	if len(m.Authors) == 0 {
		return ""
	}
	return m.Authors[0]
}

// Variable returns the catalogue entry for name.
func (m *Manifest) Variable(name string) (Variable, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// HasVariable reports whether name is declared in the catalogue.
func (m *Manifest) HasVariable(name string) bool {
	_, ok := m.Variable(name)
	return ok
}

// PlatformNames returns the platform names in declaration order.
func (m *Manifest) PlatformNames() []string {
	names := make([]string, 0, len(m.Platforms))
	for _, p := range m.Platforms {
		names = append(names, p.Name)
	}
	return names
}

// IncludeWhenFiles returns the include_when keys sorted lexicographically.
func (m *Manifest) IncludeWhenFiles() []string {
	files := make([]string, 0, len(m.IncludeWhen))
	for f := range m.IncludeWhen {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}
