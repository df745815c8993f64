// Package syntax runs the configuration-management runtime's syntax checker
// against a unit through a synthesized minimal playbook.
//
// The checker command comes from tool configuration (.universe.yaml or
// ~/.universe/config.yaml) and is run through sh -c, the same trust level as
// a Makefile in the unit.
package syntax

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// CommandRunner executes shell commands. Tests inject fakes.
type CommandRunner interface {
	// Run executes command in workDir and returns its output.
	Run(ctx context.Context, workDir, command string) (stdout, stderr string, exitCode int, err error)
}

// ShellRunner implements CommandRunner with sh -c.
type ShellRunner struct {
	// Env, when set, is appended to the process environment.
	Env []string
}

// Run executes a shell command using sh -c.
func (r *ShellRunner) Run(ctx context.Context, workDir, command string) (stdout, stderr string, exitCode int, err error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workDir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
	}
	return stdout, stderr, exitCode, err
}

var _ CommandRunner = (*ShellRunner)(nil)
