// Package lint provides the rule registry and the linter that evaluates rules
// against a unit's manifest and layout.
//
// A rule declares exactly one predicate, and the predicate's type fixes the
// subject kind it is evaluated against. Rules are registered once at startup
// and the registry is read-only afterwards.
package lint

import (
	"fmt"

	"github.com/Leenie/ansible-universe/internal/layout"
	"github.com/Leenie/ansible-universe/internal/manifest"
)

// SubjectKind identifies what a rule checks. The declaration order is the
// canonical order of diagnostics.
type SubjectKind int

// Subject kinds.
const (
	SubjectUnit SubjectKind = iota
	SubjectVariable
	SubjectSubdirectory
	SubjectTask
)

// String returns the kind name.
func (k SubjectKind) String() string {
	switch k {
	case SubjectUnit:
		return "unit"
	case SubjectVariable:
		return "variable"
	case SubjectSubdirectory:
		return "subdirectory"
	case SubjectTask:
		return "task"
	default:
		return fmt.Sprintf("SubjectKind(%d)", int(k))
	}
}

// Severity of a diagnostic. Only errors fail a run.
type Severity string

// Severities.
const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Predicates, one per subject kind. A predicate returns true when the subject
// conforms. Predicates must not mutate their arguments.
type (
	UnitPredicate         func(c *Context) bool
	VariablePredicate     func(v manifest.Variable, c *Context) bool
	SubdirectoryPredicate func(name string, c *Context) bool
	TaskPredicate         func(t layout.Task, c *Context) bool
)

// Rule describes one check. Exactly one of the predicate fields is set.
type Rule struct {
	ID       string
	Group    string
	Message  string
	Severity Severity

	// Disabled rules only run when selected explicitly.
	Disabled bool

	Unit         UnitPredicate
	Variable     VariablePredicate
	Subdirectory SubdirectoryPredicate
	Task         TaskPredicate

	// Explain, when set on a unit rule, names the offending parts of the unit.
	// It is appended to Message when the rule fails.
	Explain func(c *Context) string
}

// DefaultEnabled reports whether the rule runs without an explicit selection.
func (r Rule) DefaultEnabled() bool {
	return !r.Disabled
}

// Kind returns the subject kind of the rule's predicate.
func (r Rule) Kind() SubjectKind {
	switch {
	case r.Variable != nil:
		return SubjectVariable
	case r.Subdirectory != nil:
		return SubjectSubdirectory
	case r.Task != nil:
		return SubjectTask
	default:
		return SubjectUnit
	}
}

func (r Rule) predicateCount() int {
	n := 0
	if r.Unit != nil {
		n++
	}
	if r.Variable != nil {
		n++
	}
	if r.Subdirectory != nil {
		n++
	}
	if r.Task != nil {
		n++
	}
	return n
}

// Context gives predicates read-only access to the unit under check.
type Context struct {
	Manifest *manifest.Manifest
	Layout   *layout.Layout

	// Kind is the unit kind (role or composition).
	Kind string

	usages map[string][]string
}

// NewContext builds a Context and precomputes derived views.
func NewContext(m *manifest.Manifest, l *layout.Layout, kind string) *Context {
	c := &Context{Manifest: m, Layout: l, Kind: kind, usages: make(map[string][]string)}
	for _, u := range l.Usages {
		key := taskKey(u.SourceFile, u.TaskIndex)
		c.usages[key] = append(c.usages[key], u.Name)
	}
	return c
}

// VariablesUsedBy returns the variables referenced by task t.
func (c *Context) VariablesUsedBy(t layout.Task) []string {
	return c.usages[taskKey(t.SourceFile, t.Index)]
}

func taskKey(file string, index int) string {
	return fmt.Sprintf("%s#%d", file, index)
}

// Diagnostic is one reported violation.
type Diagnostic struct {
	RuleID   string      `json:"rule_id"`
	Severity Severity    `json:"severity"`
	Kind     SubjectKind `json:"-"`
	Subject  string      `json:"subject"`
	Message  string      `json:"message"`

	// Fault is set when the predicate itself failed.
	Fault bool `json:"fault,omitempty"`
}

// String formats the diagnostic on one line.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: [%s] %s: %s", d.Severity, d.RuleID, d.Subject, d.Message)
}

// Result is the outcome of an evaluation.
type Result struct {
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Passed is true iff no diagnostic has error severity.
	Passed bool `json:"passed"`
}

// Count returns the number of diagnostics with severity s.
func (r *Result) Count(s Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			n++
		}
	}
	return n
}
