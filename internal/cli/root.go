package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Leenie/ansible-universe/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// ReportedError marks an error that was already printed through the output.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r *ReportedError
	return errors.As(err, &r)
}

func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "universe [flags] TARGET...",
		Short: "Build, check, package and publish Ansible roles",
		Long: `universe builds Ansible roles from a declarative manifest (meta/main.yml).

Targets:
  init       create the role skeleton and a starter manifest
  show       summarize the manifest and layout (--readme renders README.md)
  dist       generate tasks/main.yml and README.md
  check      dist, then lint the role and run the syntax checker
  package    check, then build dist/<name>-<version>.tgz
  publish    package, then upload the archive to --repository
  distclean  remove generated files (--all also removes dist/)

Several targets run in order; a target already satisfied in this
invocation is not run again.`,
		Example: `  universe check
  universe -C roles/web dist check
  universe -r https://repo.example/roles/ publish`,
		Version:       formatVersion(info),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if flags.NoColor {
				_ = os.Setenv("NO_COLOR", "1")
			}
			if _, err := tui.NewOutput(cmd.OutOrStdout(), flags.Output); err != nil {
				return fmt.Errorf("%w: must be one of %v", err, ValidOutputFormats())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runTargets(cmd, flags, info, args)
		},
	}

	AddGlobalFlags(cmd, flags)
	AddTargetFlags(cmd, flags)
	AddRulesCommand(cmd, flags)
	return cmd
}

func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command with the provided context and build info.
func Execute(ctx context.Context, info BuildInfo) error {
	return execute(ctx, info, os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, info BuildInfo, args []string, stdout, stderr io.Writer) error {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, info)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	defer CloseLogFile()
	//nolint:contextcheck // cobra passes the context through cmd.Context()
	return cmd.ExecuteContext(ctx)
}
