// Package errors provides centralized error handling for universe.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors of the build taxonomy.
var (
	// ErrMalformedManifest indicates the manifest is not a structurally valid document.
	ErrMalformedManifest = errors.New("malformed manifest")

	// ErrIncompatibleVersion indicates the manifest declares a schema newer than supported.
	ErrIncompatibleVersion = errors.New("incompatible manifest schema version")

	// ErrUnreadableLayout indicates the unit directory tree could not be read.
	ErrUnreadableLayout = errors.New("unreadable layout")

	// ErrDuplicateRule indicates a rule id was registered twice.
	ErrDuplicateRule = errors.New("rule already registered")

	// ErrGenerationIO indicates a generated artifact could not be written.
	ErrGenerationIO = errors.New("artifact write failed")

	// ErrTargetAction wraps any failure of an external collaborator invoked by a target.
	ErrTargetAction = errors.New("target action failed")

	// ErrLintFailed indicates a check run completed with at least one error-severity diagnostic.
	// It is a result state, not an infrastructure failure.
	ErrLintFailed = errors.New("lint failed")
)

// Sentinel errors of the tool surface.
var (
	// ErrUnknownTarget indicates the requested lifecycle target does not exist.
	ErrUnknownTarget = errors.New("no such target")

	// ErrUnknownRule indicates a rule selector matched no registered rule or group.
	ErrUnknownRule = errors.New("no such rule")

	// ErrInvalidRule indicates a rule descriptor is incomplete.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrDependencyCycle indicates the target graph is not acyclic.
	ErrDependencyCycle = errors.New("dependency cycle")

	// ErrNoRepository indicates publish was requested without a repository endpoint.
	ErrNoRepository = errors.New("no repository")

	// ErrUnitLocked indicates another process holds the unit lock.
	ErrUnitLocked = errors.New("unit is locked by another process")

	// ErrInvalidTarget indicates a target definition is inconsistent.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrSyntaxCheckFailed indicates the syntax checker rejected the unit.
	ErrSyntaxCheckFailed = errors.New("syntax check failed")

	// ErrPackageFailed indicates the archive could not be produced.
	ErrPackageFailed = errors.New("packaging failed")

	// ErrPublishFailed indicates the upload was rejected or did not complete.
	ErrPublishFailed = errors.New("publish failed")

	// ErrArchiveMissing indicates publish found no archive for the current version.
	ErrArchiveMissing = errors.New("archive not found")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrCommandFailed indicates that a command execution failed.
	ErrCommandFailed = errors.New("command failed")

	// ErrCommandTimeout indicates a command exceeded its timeout duration.
	ErrCommandTimeout = errors.New("command timeout exceeded")
)

// Exit codes surfaced by the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates an infrastructure failure.
	ExitError = 1
	// ExitInvalidInput indicates invalid user input.
	ExitInvalidInput = 2
	// ExitLintFailure indicates a completed check with error diagnostics.
	ExitLintFailure = 3
)

// ExitCodeError wraps an error with the process exit status it should produce.
type ExitCodeError struct {
	Code int
	Err  error
}

// NewExitCodeError wraps err so that the CLI exits with code.
func NewExitCodeError(code int, err error) *ExitCodeError {
	return &ExitCodeError{Code: code, Err: err}
}

// Error implements the error interface.
func (e *ExitCodeError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status for err.
// Explicit ExitCodeError wrappers win; otherwise lint failures map to
// ExitLintFailure, input errors to ExitInvalidInput and everything else to ExitError.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coded *ExitCodeError
	if errors.As(err, &coded) {
		return coded.Code
	}
	switch {
	case errors.Is(err, ErrLintFailed):
		return ExitLintFailure
	case errors.Is(err, ErrUnknownTarget),
		errors.Is(err, ErrUnknownRule),
		errors.Is(err, ErrNoRepository),
		errors.Is(err, ErrInvalidOutputFormat):
		return ExitInvalidInput
	default:
		return ExitError
	}
}
