// Package cli provides the command-line interface for universe.
package cli

import (
	"strings"

	"github.com/spf13/cobra"

	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/tui"
)

// GlobalFlags holds the command-line flags.
type GlobalFlags struct {
	// Directory is the unit root. Default: the working directory.
	Directory string
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// NoColor disables styled output.
	NoColor bool

	// Repository overrides the configured publish endpoint.
	Repository string
	// Exclude adds user-owned paths on top of the configured ones.
	Exclude []string
	// Enable and Disable adjust the rule selection by id or group.
	Enable  []string
	Disable []string
	// All makes distclean remove dist/ as well.
	All bool
	// Readme makes show render the generated description file.
	Readme bool
}

// AddGlobalFlags adds the flags shared by every command.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.Directory, "directory", "C", ".", "unit root directory")
	pf.StringVarP(&flags.Output, "output", "o", tui.FormatText, "output format (text|json)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	pf.BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	pf.StringSliceVar(&flags.Enable, "enable", nil, "enable rules by id or group")
	pf.StringSliceVar(&flags.Disable, "disable", nil, "disable rules by id or group")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// AddTargetFlags adds the flags that only apply when running targets.
func AddTargetFlags(cmd *cobra.Command, flags *GlobalFlags) {
	f := cmd.Flags()
	f.StringVarP(&flags.Repository, "repository", "r", "", "publish endpoint URL")
	f.StringSliceVarP(&flags.Exclude, "exclude", "x", nil, "comma-separated path patterns never generated, removed or packaged")
	f.BoolVarP(&flags.All, "all", "a", false, "with distclean, also remove dist/")
	f.BoolVar(&flags.Readme, "readme", false, "with show, render the generated README")
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{tui.FormatText, tui.FormatJSON}
}

// ExitCodeForError returns the process exit status for err.
// Flag parsing errors raised by cobra count as invalid input.
func ExitCodeForError(err error) int {
	if err == nil {
		return uerrors.ExitSuccess
	}
	if code := uerrors.ExitCode(err); code != uerrors.ExitError {
		return code
	}
	if isInvalidInputError(err.Error()) {
		return uerrors.ExitInvalidInput
	}
	return uerrors.ExitError
}

func isInvalidInputError(errMsg string) bool {
	patterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"unknown command",
	}
	for _, p := range patterns {
		if strings.Contains(errMsg, p) {
			return true
		}
	}
	return false
}
