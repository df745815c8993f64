// Package lifecycle resolves and runs the fixed graph of build targets.
//
// Targets and their prerequisite edges are declared once. Running a target
// executes its prerequisite closure in a stable topological order, stops at
// the first failure, and refreshes the unit snapshot after any target that
// changes the tree.
//
// Import rules:
//   - CAN import: internal/constants, internal/errors, internal/manifest,
//     internal/layout, internal/generate, internal/lint, internal/syntax,
//     internal/pack, internal/publish
//   - MUST NOT import: internal/cli, internal/config, internal/tui
package lifecycle

import (
	"context"
	"time"

	"github.com/Leenie/ansible-universe/internal/constants"
	"github.com/Leenie/ansible-universe/internal/lint"
)

// Target names.
const (
	TargetInit      = "init"
	TargetShow      = "show"
	TargetDist      = "dist"
	TargetCheck     = "check"
	TargetPackage   = "package"
	TargetPublish   = "publish"
	TargetDistclean = "distclean"
)

// Action performs a target. It returns the outcome on success; on failure the
// outcome may still carry diagnostics collected before the error.
type Action func(ctx context.Context, s *Session, in Input) (Outcome, error)

// Input carries run-time facts to an action.
type Input struct {
	// Forced is set when a prerequisite did work in this run, so cached
	// outputs of this target cannot be trusted.
	Forced bool
}

// Outcome is what an action reports back.
type Outcome struct {
	// UpToDate marks a run that found its outputs current and changed nothing.
	UpToDate bool

	Detail      string
	Diagnostics []lint.Diagnostic

	// Report holds target-specific data for the front end, such as the
	// summary produced by show.
	Report any
}

// Target is a named build step.
type Target struct {
	Name          string
	Description   string
	Prerequisites []string

	// Mutates marks targets whose action changes the unit tree. The snapshot
	// is rebuilt before any later target runs.
	Mutates bool

	// Destructive targets have no prerequisites and may not be prerequisites.
	Destructive bool

	Action Action
}

// Step is the record of one target within a run.
type Step struct {
	Target   string                 `json:"target"`
	Status   constants.TargetStatus `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Duration time.Duration          `json:"duration_ns"`

	// Reused is true when the target already completed earlier in this
	// invocation and was not run again.
	Reused bool `json:"reused,omitempty"`

	Report any `json:"report,omitempty"`
}

// RunResult is the outcome of running one requested target.
type RunResult struct {
	RunID  string   `json:"run_id"`
	Target string   `json:"target"`
	Order  []string `json:"order"`
	Steps  []Step   `json:"steps"`

	// FailedTarget names the target whose action failed, if any.
	FailedTarget string `json:"failed_target,omitempty"`
	Err          error  `json:"-"`

	// Diagnostics collects lint diagnostics from every executed target,
	// including the failing one.
	Diagnostics []lint.Diagnostic `json:"diagnostics,omitempty"`
}

// Succeeded reports whether every target in the order completed.
func (r *RunResult) Succeeded() bool {
	return r.Err == nil
}

// Step returns the step for target name.
func (r *RunResult) Step(name string) (Step, bool) {
	for _, s := range r.Steps {
		if s.Target == name {
			return s, true
		}
	}
	return Step{}, false
}

// Executed lists the targets whose action actually ran in this call, in order.
func (r *RunResult) Executed() []string {
	var out []string
	for _, s := range r.Steps {
		if !s.Reused && s.Status != constants.TargetStatusNotRun {
			out = append(out, s.Target)
		}
	}
	return out
}
