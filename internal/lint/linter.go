package lint

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// Linter evaluates registered rules.
type Linter struct {
	registry *Registry
	parallel bool
}

// Option configures a Linter.
type Option func(*Linter)

// WithParallel toggles concurrent evaluation across subjects.
func WithParallel(enabled bool) Option {
	return func(l *Linter) {
		l.parallel = enabled
	}
}

// NewLinter creates a linter over registry. Evaluation is parallel by default.
func NewLinter(registry *Registry, opts ...Option) *Linter {
	l := &Linter{registry: registry, parallel: true}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// job is one (rule, subject) evaluation. Its position fields give the
// canonical order: subject kind, subject index, rule registration index.
type job struct {
	kind      SubjectKind
	subject   int
	ruleIndex int
	rule      Rule
	label     string
	eval      func() bool
	explain   func() string
}

// Evaluate runs the rules named by ids against c. A nil ids slice selects the
// default-enabled rules. The first call seals the registry.
func (l *Linter) Evaluate(ctx context.Context, c *Context, ids []string) (*Result, error) {
	l.registry.Seal()
	log := zerolog.Ctx(ctx).With().Str("component", "lint").Logger()

	if ids == nil {
		var err error
		if ids, err = l.registry.Select(Selection{}); err != nil {
			return nil, err
		}
	}

	rules := make([]indexedRule, 0, len(ids))
	all := l.registry.Rules()
	for _, id := range ids {
		i := slices.IndexFunc(all, func(r Rule) bool { return r.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", uerrors.ErrUnknownRule, id)
		}
		rules = append(rules, indexedRule{index: i, rule: all[i]})
	}

	jobs := l.plan(c, rules)
	results := make([]*Diagnostic, len(jobs))

	run := func(i int) {
		results[i] = runJob(jobs[i])
	}

	if l.parallel && len(jobs) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := range jobs {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				run(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range jobs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			run(i)
		}
	}

	res := &Result{Passed: true}
	order := make([]int, 0, len(jobs))
	for i, d := range results {
		if d != nil {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compareJobs(jobs[a], jobs[b])
	})
	for _, i := range order {
		d := *results[i]
		if d.Severity == SeverityError {
			res.Passed = false
		}
		res.Diagnostics = append(res.Diagnostics, d)
	}

	log.Debug().
		Int("rules", len(rules)).
		Int("evaluations", len(jobs)).
		Int("diagnostics", len(res.Diagnostics)).
		Bool("passed", res.Passed).
		Msg("lint evaluation complete")
	return res, nil
}

type indexedRule struct {
	index int
	rule  Rule
}

// plan expands rules into one job per matching subject.
func (l *Linter) plan(c *Context, rules []indexedRule) []job {
	var jobs []job
	for _, ir := range rules {
		rule := ir.rule
		switch rule.Kind() {
		case SubjectUnit:
			j := job{
				kind: SubjectUnit, ruleIndex: ir.index, rule: rule,
				label: c.Manifest.Name,
				eval:  func() bool { return rule.Unit(c) },
			}
			if rule.Explain != nil {
				j.explain = func() string { return rule.Explain(c) }
			}
			jobs = append(jobs, j)
		case SubjectVariable:
			for i, v := range c.Manifest.Variables {
				jobs = append(jobs, job{
					kind: SubjectVariable, subject: i, ruleIndex: ir.index, rule: rule,
					label: v.Name,
					eval:  func() bool { return rule.Variable(v, c) },
				})
			}
		case SubjectSubdirectory:
			for i, name := range c.Layout.Subdirectories {
				jobs = append(jobs, job{
					kind: SubjectSubdirectory, subject: i, ruleIndex: ir.index, rule: rule,
					label: name + "/",
					eval:  func() bool { return rule.Subdirectory(name, c) },
				})
			}
		case SubjectTask:
			for i, t := range c.Layout.Tasks {
				jobs = append(jobs, job{
					kind: SubjectTask, subject: i, ruleIndex: ir.index, rule: rule,
					label: t.Subject(),
					eval:  func() bool { return rule.Task(t, c) },
				})
			}
		}
	}
	return jobs
}

// runJob evaluates one job. A panicking predicate counts as a failure and
// its diagnostic records the fault.
func runJob(j job) (d *Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			d = &Diagnostic{
				RuleID:   j.rule.ID,
				Severity: j.rule.Severity,
				Kind:     j.kind,
				Subject:  j.label,
				Message:  fmt.Sprintf("%s (internal fault in rule: %v)", j.rule.Message, r),
				Fault:    true,
			}
		}
	}()
	if j.eval() {
		return nil
	}
	msg := j.rule.Message
	if j.explain != nil {
		if detail := j.explain(); detail != "" {
			msg += ": " + detail
		}
	}
	return &Diagnostic{
		RuleID:   j.rule.ID,
		Severity: j.rule.Severity,
		Kind:     j.kind,
		Subject:  j.label,
		Message:  msg,
	}
}

func compareJobs(a, b job) int {
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}
	if a.subject != b.subject {
		return a.subject - b.subject
	}
	return a.ruleIndex - b.ruleIndex
}
