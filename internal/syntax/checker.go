package syntax

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// Names of the files synthesized in the scratch directory.
const (
	PlaybookName  = "playbook.yml"
	InventoryName = "inventory.cfg"
	ConfigName    = "ansible.cfg"
)

// Location is one error position reported by the checker.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// String formats the location as file:line:column.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Result is the outcome of one syntax check.
type Result struct {
	Passed     bool          `json:"passed"`
	Command    string        `json:"command"`
	ExitCode   int           `json:"exit_code"`
	Output     string        `json:"output,omitempty"`
	Locations  []Location    `json:"locations,omitempty"`
	DurationMs int64         `json:"duration_ms"`
	Duration   time.Duration `json:"-"`
}

// Checker runs the syntax check.
type Checker struct {
	command string
	timeout time.Duration
	runner  CommandRunner
}

// NewChecker creates a checker running command (ansible-playbook when empty).
func NewChecker(command string, timeout time.Duration, runner CommandRunner) *Checker {
	if strings.TrimSpace(command) == "" {
		command = constants.DefaultSyntaxCommand
	}
	if timeout <= 0 {
		timeout = constants.DefaultSyntaxTimeout
	}
	if runner == nil {
		runner = &ShellRunner{}
	}
	return &Checker{command: command, timeout: timeout, runner: runner}
}

// Check validates the unit rooted at root under the role name name.
// A rejected unit returns a Result with Passed false and an error wrapping
// ErrSyntaxCheckFailed. A timeout wraps ErrCommandTimeout.
func (c *Checker) Check(ctx context.Context, root, name string) (*Result, error) {
	log := zerolog.Ctx(ctx).With().Str("component", "syntax").Logger()

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve unit root: %w", err)
	}

	scratch, err := os.MkdirTemp("", "universe-syntax-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	role := name
	if filepath.Base(abs) != name {
		role = abs
	}
	if err := writeScaffold(scratch, filepath.Dir(abs), role); err != nil {
		return nil, err
	}

	command := c.command + " " + PlaybookName + " --syntax-check"
	cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log.Info().Str("command", command).Str("unit", name).Msg("running syntax check")
	start := time.Now()
	stdout, stderr, exitCode, runErr := c.runner.Run(cmdCtx, scratch, command)
	elapsed := time.Since(start)

	output := strings.TrimSpace(stdout + "\n" + stderr)
	res := &Result{
		Command:    command,
		ExitCode:   exitCode,
		Output:     output,
		Locations:  ParseLocations(output, abs),
		DurationMs: elapsed.Milliseconds(),
		Duration:   elapsed,
	}

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		log.Error().Dur("duration_ms", elapsed).Msg("syntax check timed out")
		return res, fmt.Errorf("%w: %s after %s", uerrors.ErrCommandTimeout, command, c.timeout)
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	if runErr != nil || exitCode != 0 {
		log.Warn().Int("exit_code", exitCode).Int("locations", len(res.Locations)).Msg("syntax check failed")
		return res, fmt.Errorf("%w: %s exited with code %d", uerrors.ErrSyntaxCheckFailed, command, exitCode)
	}

	res.Passed = true
	log.Debug().Dur("duration_ms", elapsed).Msg("syntax check passed")
	return res, nil
}

type play struct {
	Hosts      string   `yaml:"hosts"`
	Connection string   `yaml:"connection"`
	Roles      []string `yaml:"roles"`
}

// writeScaffold writes the playbook, inventory and ansible.cfg that make the
// unit loadable as a role from rolesPath.
func writeScaffold(dir, rolesPath, role string) error {
	playbook, err := yaml.Marshal([]play{{Hosts: "127.0.0.1", Connection: "local", Roles: []string{role}}})
	if err != nil {
		return fmt.Errorf("encode playbook: %w", err)
	}
	files := map[string]string{
		PlaybookName:  "---\n" + string(playbook),
		InventoryName: "localhost ansible_connection=local\n",
		ConfigName:    fmt.Sprintf("[defaults]\nroles_path = %s\ninventory = %s\n", rolesPath, InventoryName),
	}
	for file, content := range files {
		if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
	}
	return nil
}

//nolint:gochecknoglobals // compiled once
var locationPattern = regexp.MustCompile(`appears to (?:be|have been) in '([^']+)': line (\d+), column (\d+)`)

// ParseLocations extracts error positions from checker output. Files under
// root are reported relative to it.
func ParseLocations(output, root string) []Location {
	var out []Location
	for _, m := range locationPattern.FindAllStringSubmatch(output, -1) {
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		file := m[1]
		if rel, err := filepath.Rel(root, file); err == nil && !strings.HasPrefix(rel, "..") {
			file = filepath.ToSlash(rel)
		}
		out = append(out, Location{File: file, Line: line, Column: col})
	}
	return out
}
