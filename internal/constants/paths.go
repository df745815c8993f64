package constants

import "path/filepath"

// Directory names inside a unit.
const (
	// TasksDir holds the task-definition files.
	TasksDir = "tasks"

	// MetaDir holds the manifest.
	MetaDir = "meta"

	// DefaultsDir holds default variable values.
	DefaultsDir = "defaults"

	// DistDir receives packaged archives.
	DistDir = "dist"
)

// File names and canonical relative paths inside a unit.
const (
	// MainFileName is the conventional entry file name in every sub-directory.
	MainFileName = "main.yml"

	// TaskFileExt is the extension recognized for task-definition files.
	TaskFileExt = ".yml"

	// DescriptionPath is the generated human-readable description file.
	DescriptionPath = "README.md"

	// LockFileName is the advisory lock file created at the unit root during a run.
	LockFileName = ".universe.lock"

	// ProjectConfigName is the per-unit tool configuration file.
	ProjectConfigName = ".universe.yaml"
)

//nolint:gochecknoglobals // derived paths, read-only
var (
	// ManifestPath is the manifest location relative to the unit root.
	ManifestPath = filepath.Join(MetaDir, MainFileName)

	// AggregationPath is the generated aggregation file relative to the unit root.
	AggregationPath = filepath.Join(TasksDir, MainFileName)

	// DefaultsPath is the defaults file relative to the unit root.
	DefaultsPath = filepath.Join(DefaultsDir, MainFileName)
)

// Home directory layout for global state.
const (
	// UniverseHome is the hidden directory in the user's home for global state.
	UniverseHome = ".universe"

	// LogsDir is the directory under UniverseHome holding log files.
	LogsDir = "logs"

	// GlobalConfigName is the global configuration file name under UniverseHome.
	GlobalConfigName = "config.yaml"

	// CLILogFileName is the global CLI log file.
	CLILogFileName = "universe.log"
)

// GeneratedMarker is the header line identifying machine-generated files.
const GeneratedMarker = "THIS IS A GENERATED FILE, DO NOT EDIT"
