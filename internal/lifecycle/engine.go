package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// Engine runs targets. It remembers targets completed earlier in the same
// invocation and does not run them again.
type Engine struct {
	targets map[string]Target
	names   []string

	completed map[string]Step
	changed   map[string]bool
}

// New builds an engine over targets. The graph is validated up front:
// duplicate or unknown names, destructive prerequisites and cycles are rejected.
func New(targets ...Target) (*Engine, error) {
	e := &Engine{
		targets:   make(map[string]Target, len(targets)),
		completed: make(map[string]Step),
		changed:   make(map[string]bool),
	}
	for _, t := range targets {
		if strings.TrimSpace(t.Name) == "" || t.Action == nil {
			return nil, fmt.Errorf("%w: %q needs a name and an action", uerrors.ErrInvalidTarget, t.Name)
		}
		if _, dup := e.targets[t.Name]; dup {
			return nil, fmt.Errorf("%w: %s declared twice", uerrors.ErrInvalidTarget, t.Name)
		}
		if t.Destructive && len(t.Prerequisites) > 0 {
			return nil, fmt.Errorf("%w: destructive target %s has prerequisites", uerrors.ErrInvalidTarget, t.Name)
		}
		e.targets[t.Name] = t
		e.names = append(e.names, t.Name)
	}
	for _, name := range e.names {
		for _, p := range e.targets[name].Prerequisites {
			if pt, ok := e.targets[p]; ok && pt.Destructive {
				return nil, fmt.Errorf("%w: %s requires destructive target %s", uerrors.ErrInvalidTarget, name, p)
			}
		}
		if _, err := e.Resolve(name); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Targets returns the targets in declaration order.
func (e *Engine) Targets() []Target {
	out := make([]Target, 0, len(e.names))
	for _, n := range e.names {
		out = append(out, e.targets[n])
	}
	return out
}

// Has reports whether name is a known target.
func (e *Engine) Has(name string) bool {
	_, ok := e.targets[name]
	return ok
}

// Resolve returns the execution order for name: its prerequisite closure
// followed by name itself. Every prerequisite precedes its dependents, no
// target appears twice, and ties follow declaration order of prerequisites.
func (e *Engine) Resolve(name string) ([]string, error) {
	if _, ok := e.targets[name]; !ok {
		return nil, fmt.Errorf("%w: %s", uerrors.ErrUnknownTarget, name)
	}

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int)
	var order, path []string

	var visit func(string) error
	visit = func(n string) error {
		t, ok := e.targets[n]
		if !ok {
			return fmt.Errorf("%w: %s (required by %s)", uerrors.ErrUnknownTarget, n, path[len(path)-1])
		}
		switch state[n] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", uerrors.ErrDependencyCycle, strings.Join(append(path, n), " -> "))
		}
		state[n] = visiting
		path = append(path, n)
		for _, p := range t.Prerequisites {
			if err := visit(p); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[n] = visited
		order = append(order, n)
		return nil
	}

	if err := visit(name); err != nil {
		return nil, err
	}
	return order, nil
}

// Run executes name and its prerequisites against s. It never panics on a
// failing action; the failure is reported in the result.
func (e *Engine) Run(ctx context.Context, s *Session, name string) *RunResult {
	runID := uuid.NewString()
	log := zerolog.Ctx(ctx).With().
		Str("component", "lifecycle").
		Str("run_id", runID).
		Str("requested", name).
		Logger()
	ctx = log.WithContext(ctx)

	res := &RunResult{RunID: runID, Target: name}

	order, err := e.Resolve(name)
	if err != nil {
		res.Err = err
		return res
	}
	res.Order = order
	log.Debug().Strs("order", order).Msg("resolved targets")

	stale := false
	for _, tname := range order {
		if res.Err != nil {
			res.Steps = append(res.Steps, Step{Target: tname, Status: constants.TargetStatusNotRun})
			continue
		}
		if prev, ok := e.completed[tname]; ok {
			prev.Reused = true
			prev.Duration = 0
			res.Steps = append(res.Steps, prev)
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Err = err
			res.FailedTarget = tname
			res.Steps = append(res.Steps, Step{Target: tname, Status: constants.TargetStatusNotRun})
			continue
		}

		if stale {
			s.Invalidate()
			stale = false
		}

		t := e.targets[tname]
		step, out, err := e.execute(ctx, s, t)
		res.Diagnostics = append(res.Diagnostics, out.Diagnostics...)
		res.Steps = append(res.Steps, step)

		if t.Mutates {
			stale = true
		}
		if err != nil {
			res.Err = err
			res.FailedTarget = tname
			if stale {
				s.Invalidate()
			}
			continue
		}

		if t.Destructive {
			clear(e.completed)
			clear(e.changed)
		}
		e.completed[tname] = step
		e.changed[tname] = t.Mutates && step.Status == constants.TargetStatusSucceeded
	}

	if stale {
		s.Invalidate()
	}
	return res
}

func (e *Engine) execute(ctx context.Context, s *Session, t Target) (Step, Outcome, error) {
	log := zerolog.Ctx(ctx).With().Str("target", t.Name).Logger()
	ctx = log.WithContext(ctx)

	in := Input{Forced: e.forced(t)}
	log.Info().Bool("forced", in.Forced).Msg("running target")

	start := time.Now()
	out, err := t.Action(ctx, s, in)
	elapsed := time.Since(start)

	step := Step{Target: t.Name, Detail: out.Detail, Duration: elapsed, Report: out.Report}
	switch {
	case err != nil:
		step.Status = constants.TargetStatusFailed
		log.Error().Err(err).Dur("duration_ms", elapsed).Msg("target failed")
	case out.UpToDate:
		step.Status = constants.TargetStatusUpToDate
		log.Info().Dur("duration_ms", elapsed).Msg("target up to date")
	default:
		step.Status = constants.TargetStatusSucceeded
		log.Info().Dur("duration_ms", elapsed).Msg("target succeeded")
	}
	return step, out, err
}

// forced reports whether a prerequisite of t, directly or transitively,
// changed the tree in this invocation.
func (e *Engine) forced(t Target) bool {
	for _, p := range t.Prerequisites {
		if e.changed[p] || e.forced(e.targets[p]) {
			return true
		}
	}
	return false
}
