// Package constants provides centralized constant values used throughout universe.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Version and schema defaults for unit manifests.
const (
	// DefaultUnitVersion is the version assigned when the manifest omits one.
	DefaultUnitVersion = "0.0.1"

	// ManifestSchemaVersion is the newest manifest schema this build understands.
	// Manifests declaring a higher schema_version are rejected at load time.
	ManifestSchemaVersion = 1
)

// Unit kinds. The kind selects the sub-directory allow-list used by the layout rule.
const (
	// KindRole is a regular role.
	KindRole = "role"

	// KindComposition is a higher-level composition of roles (playbook project).
	KindComposition = "composition"
)

// RoleSubdirs is the fixed, version-pinned allow-list of role sub-directories.
//
//nolint:gochecknoglobals // read-only lookup table
var RoleSubdirs = []string{
	"defaults",
	"files",
	"handlers",
	"library",
	"meta",
	"tasks",
	"templates",
	"vars",
}

// CompositionSubdirs is the allow-list for compositions.
//
//nolint:gochecknoglobals // read-only lookup table
var CompositionSubdirs = []string{
	"group_vars",
	"host_vars",
	"library",
	"playbooks",
	"roles",
}

// VCSDirs are version-control metadata directories. They are never part of
// the unit layout.
//
//nolint:gochecknoglobals // read-only lookup table
var VCSDirs = []string{".bzr", ".git", ".hg", ".svn"}

// AllowedSubdirs returns the allow-list for the given unit kind.
// Unknown kinds get the role allow-list.
func AllowedSubdirs(kind string) []string {
	if kind == KindComposition {
		return CompositionSubdirs
	}
	return RoleSubdirs
}

// Timeouts for external collaborators.
const (
	// DefaultSyntaxTimeout bounds a single syntax-check invocation.
	DefaultSyntaxTimeout = 5 * time.Minute

	// DefaultPublishTimeout bounds a single upload attempt.
	DefaultPublishTimeout = 2 * time.Minute
)

// Log rotation settings for the global CLI log file.
const (
	// LogMaxSizeMB is the size in megabytes at which the log file rotates.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is how long rotated files are kept.
	LogMaxAgeDays = 14

	// LogCompress enables gzip compression of rotated files.
	LogCompress = true
)

// DefaultSyntaxCommand is the executable used for syntax checking.
const DefaultSyntaxCommand = "ansible-playbook"

// VariableSeparator joins the manifest prefix and the rest of a variable name.
const VariableSeparator = "_"
