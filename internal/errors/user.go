package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries maps sentinels to user-facing text. A slice, not a map,
// because lookups must walk the chain with errors.Is().
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	{
		err: ErrLintFailed,
		info: ErrorInfo{
			Message: "The unit failed one or more error-level checks.",
			Action:  "Fix the reported errors, or disable the rule with --disable <id>.",
		},
	},
	{
		err: ErrMalformedManifest,
		info: ErrorInfo{
			Message: "The manifest meta/main.yml is not valid YAML or has the wrong shape.",
			Action:  "Fix the manifest syntax; run 'universe init' in an empty directory for a reference.",
		},
	},
	{
		err: ErrIncompatibleVersion,
		info: ErrorInfo{
			Message: "The manifest was written for a newer version of universe.",
			Action:  "Upgrade universe or lower schema_version in meta/main.yml.",
		},
	},
	{
		err: ErrUnreadableLayout,
		info: ErrorInfo{
			Message: "The unit directory could not be read.",
			Action:  "Check the --directory path and file permissions.",
		},
	},
	{
		err: ErrDuplicateRule,
		info: ErrorInfo{
			Message: "Two checks were registered under the same identifier.",
			Action:  "",
		},
	},
	{
		err: ErrGenerationIO,
		info: ErrorInfo{
			Message: "A generated file could not be written.",
			Action:  "Check that tasks/ and the unit root are writable.",
		},
	},
	{
		err: ErrSyntaxCheckFailed,
		info: ErrorInfo{
			Message: "ansible-playbook rejected the unit.",
			Action:  "Fix the reported locations and run 'universe check' again.",
		},
	},
	{
		err: ErrPackageFailed,
		info: ErrorInfo{
			Message: "The archive could not be created.",
			Action:  "Check free space and permissions on dist/.",
		},
	},
	{
		err: ErrPublishFailed,
		info: ErrorInfo{
			Message: "The repository rejected the upload.",
			Action:  "Verify the repository URL and credentials, then retry.",
		},
	},
	{
		err: ErrArchiveMissing,
		info: ErrorInfo{
			Message: "No archive exists for the current version.",
			Action:  "Run 'universe package' first.",
		},
	},
	{
		err: ErrNoRepository,
		info: ErrorInfo{
			Message: "No repository was configured for publish.",
			Action:  "Pass --repository URL or set repository in .universe.yaml.",
		},
	},
	{
		err: ErrUnknownTarget,
		info: ErrorInfo{
			Message: "Unknown target.",
			Action:  "Valid targets: init, show, dist, check, package, publish, distclean.",
		},
	},
	{
		err: ErrUnknownRule,
		info: ErrorInfo{
			Message: "Unknown rule or rule group.",
			Action:  "Run 'universe rules' to list available rules.",
		},
	},
	{
		err: ErrUnitLocked,
		info: ErrorInfo{
			Message: "Another universe process is working on this unit.",
			Action:  "Wait for it to finish; the lock is released when that process exits.",
		},
	},
	{
		err: ErrConfigInvalid,
		info: ErrorInfo{
			Message: "Invalid configuration.",
			Action:  "Check .universe.yaml and ~/.universe/config.yaml for invalid values.",
		},
	},
	{
		err: ErrCommandTimeout,
		info: ErrorInfo{
			Message: "An external command timed out.",
			Action:  "Increase syntax.timeout in the configuration.",
		},
	},
}

func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly message along with a suggested action.
// The action is empty when there is nothing useful to suggest.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
