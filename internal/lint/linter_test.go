package lint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/layout"
	"github.com/Leenie/ansible-universe/internal/manifest"
)

func newManifest(t *testing.T, src string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(src), "web")
	require.NoError(t, err)
	return m
}

func builtinLinter(t *testing.T, parallel bool) (*Linter, *Registry) {
	t.Helper()
	r := NewRegistry()
	r.MustRegister(Builtins()...)
	return NewLinter(r, WithParallel(parallel)), r
}

func evaluateOnly(t *testing.T, c *Context, ids ...string) *Result {
	t.Helper()
	l, _ := builtinLinter(t, true)
	res, err := l.Evaluate(context.Background(), c, ids)
	require.NoError(t, err)
	return res
}

func TestNamingRule(t *testing.T) {
	t.Parallel()

	m := newManifest(t, "prefix: web\nvariables:\n  db_host: x\n  web_db_host: y\n")
	res := evaluateOnly(t, NewContext(m, &layout.Layout{}, constants.KindRole), "variable-prefixed")

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, "variable-prefixed", d.RuleID)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, "db_host", d.Subject)
	assert.True(t, res.Passed, "warnings never fail a run")
}

func TestLayoutRule(t *testing.T) {
	t.Parallel()

	l := &layout.Layout{Subdirectories: []string{"defaults", "meta", "scripts", "tasks"}}
	res := evaluateOnly(t, NewContext(newManifest(t, ""), l, constants.KindRole), "subdir-defined")

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "scripts/", res.Diagnostics[0].Subject)
	assert.Equal(t, SeverityError, res.Diagnostics[0].Severity)
	assert.False(t, res.Passed)
}

func TestLayoutRule_CompositionKind(t *testing.T) {
	t.Parallel()

	l := &layout.Layout{Subdirectories: []string{"playbooks", "roles", "tasks"}}
	res := evaluateOnly(t, NewContext(newManifest(t, ""), l, constants.KindComposition), "subdir-defined")

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "tasks/", res.Diagnostics[0].Subject)
}

func TestIncludeWhenRule(t *testing.T) {
	t.Parallel()

	m := newManifest(t, "include_when:\n  a.yml: x\n  gone.yml: y\n  lost.yml: z\n")
	res := evaluateOnly(t, NewContext(m, &layout.Layout{TaskFiles: []string{"a.yml"}}, constants.KindRole), "manifest-include-when")
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "web", res.Diagnostics[0].Subject)
	assert.Equal(t, "include_when references a task file that does not exist: tasks/gone.yml, tasks/lost.yml", res.Diagnostics[0].Message)
	assert.False(t, res.Passed)

	res = evaluateOnly(t, NewContext(m, &layout.Layout{TaskFiles: []string{"a.yml", "gone.yml", "lost.yml"}}, constants.KindRole), "manifest-include-when")
	assert.Empty(t, res.Diagnostics)
}

func TestManifestCompleteness(t *testing.T) {
	t.Parallel()

	ids := []string{"manifest-version", "manifest-author", "manifest-license", "manifest-description", "manifest-platforms"}

	res := evaluateOnly(t, NewContext(newManifest(t, ""), &layout.Layout{}, constants.KindRole), ids...)
	got := make([]string, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		got = append(got, d.RuleID)
	}
	assert.Equal(t, ids, got, "unit diagnostics follow registration order")

	complete := newManifest(t, `
version: 1.0.0
galaxy_info:
  author: jane
  license: MIT
  description: d
  platforms: [{name: Debian}]
`)
	res = evaluateOnly(t, NewContext(complete, &layout.Layout{}, constants.KindRole), ids...)
	assert.Empty(t, res.Diagnostics)
}

func TestTaskRules(t *testing.T) {
	t.Parallel()

	tasks := []layout.Task{
		{SourceFile: "a.yml", Index: 0, Attributes: map[string]any{"name": "ok", "ping": nil}},
		{SourceFile: "a.yml", Index: 1, Attributes: map[string]any{"copy": "src=a dest=b"}},
		{SourceFile: "a.yml", Index: 2, Attributes: map[string]any{"name": "t", "template": map[string]any{"src": "x", "owner": "root"}, "remote_user": "root"}},
		{SourceFile: "b.yml", Index: 0, Attributes: map[string]any{"name": "uses", "debug": "msg={{ web_undeclared }}"}},
	}
	l := &layout.Layout{
		Tasks:  tasks,
		Usages: []layout.Usage{{Name: "web_undeclared", SourceFile: "b.yml", TaskIndex: 0}},
	}
	res := evaluateOnly(t, NewContext(newManifest(t, ""), l, constants.KindRole),
		"task-variables-declared", "task-named", "task-no-remote-user", "copy-has-owner", "template-has-owner")

	type hit struct{ rule, subject string }
	got := make([]hit, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		got = append(got, hit{d.RuleID, d.Subject})
	}
	assert.Equal(t, []hit{
		{"task-named", "a.yml#1 [copy]"},
		{"copy-has-owner", "a.yml#1 [copy]"},
		{"task-no-remote-user", "a.yml#2 (t)"},
		{"task-variables-declared", "b.yml#0 (uses)"},
	}, got)
	assert.False(t, res.Passed)
}

func TestOwnerRules_KeywordsBeforeModule(t *testing.T) {
	t.Parallel()

	l := &layout.Layout{Tasks: []layout.Task{
		{SourceFile: "a.yml", Index: 0, Attributes: map[string]any{"name": "c", "async": 10, "copy": map[string]any{"src": "a", "dest": "/b"}}},
		{SourceFile: "a.yml", Index: 1, Attributes: map[string]any{"name": "t", "become_flags": "-H", "ansible.builtin.template": map[string]any{"src": "x", "dest": "/y"}}},
		{SourceFile: "a.yml", Index: 2, Attributes: map[string]any{"name": "o", "any_errors_fatal": true, "copy": "src=a dest=b owner=root"}},
	}}
	res := evaluateOnly(t, NewContext(newManifest(t, ""), l, constants.KindRole), "copy-has-owner", "template-has-owner")

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, "copy-has-owner", res.Diagnostics[0].RuleID)
	assert.Equal(t, "a.yml#0 (c)", res.Diagnostics[0].Subject)
	assert.Equal(t, "template-has-owner", res.Diagnostics[1].RuleID)
	assert.Equal(t, "a.yml#1 (t)", res.Diagnostics[1].Subject)
}

func TestVariableDocumented(t *testing.T) {
	t.Parallel()

	m := newManifest(t, "variables:\n  web_a: described\n  web_b:\n")
	res := evaluateOnly(t, NewContext(m, &layout.Layout{}, constants.KindRole), "variable-documented")
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "web_b", res.Diagnostics[0].Subject)
}

func TestLayoutParsable(t *testing.T) {
	t.Parallel()

	l := &layout.Layout{Problems: []layout.FileError{{File: "tasks/x.yml", Err: "bad"}}}
	res := evaluateOnly(t, NewContext(newManifest(t, ""), l, constants.KindRole), "layout-parsable")
	require.Len(t, res.Diagnostics, 1)
	assert.False(t, res.Passed)
}

func TestEvaluate_FaultIsolation(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustRegister(
		Rule{
			ID: "explodes", Message: "boom rule", Severity: SeverityWarning,
			Variable: func(v manifest.Variable, _ *Context) bool {
				if v.Name == "web_bad" {
					panic("bad subject")
				}
				return true
			},
		},
		Rule{
			ID: "always-fails", Message: "fails", Severity: SeverityWarning,
			Variable: func(manifest.Variable, *Context) bool { return false },
		},
	)
	m := newManifest(t, "variables:\n  web_bad: x\n  web_good: y\n")

	res, err := NewLinter(r).Evaluate(context.Background(), NewContext(m, &layout.Layout{}, constants.KindRole), nil)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 3)

	assert.Equal(t, "explodes", res.Diagnostics[0].RuleID)
	assert.Equal(t, "web_bad", res.Diagnostics[0].Subject)
	assert.True(t, res.Diagnostics[0].Fault)
	assert.Contains(t, res.Diagnostics[0].Message, "bad subject")

	assert.Equal(t, "always-fails", res.Diagnostics[1].RuleID)
	assert.Equal(t, "web_bad", res.Diagnostics[1].Subject)
	assert.Equal(t, "always-fails", res.Diagnostics[2].RuleID)
	assert.Equal(t, "web_good", res.Diagnostics[2].Subject)
}

func TestEvaluate_DeterministicAcrossModes(t *testing.T) {
	t.Parallel()

	m := newManifest(t, "prefix: web\nvariables:\n  a: ''\n  b: ''\n  web_c: ''\n")
	l := &layout.Layout{
		Subdirectories: []string{"bin", "meta", "scripts"},
		Tasks: []layout.Task{
			{SourceFile: "a.yml", Index: 0, Attributes: map[string]any{"copy": "src=a"}},
			{SourceFile: "a.yml", Index: 1, Attributes: map[string]any{"remote_user": "x"}},
		},
	}
	c := NewContext(m, l, constants.KindRole)

	serial, _ := builtinLinter(t, false)
	want, err := serial.Evaluate(context.Background(), c, nil)
	require.NoError(t, err)
	require.NotEmpty(t, want.Diagnostics)

	parallel, _ := builtinLinter(t, true)
	for range 10 {
		got, err := parallel.Evaluate(context.Background(), c, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	var kinds []SubjectKind
	for _, d := range want.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	assert.IsNonDecreasing(t, kinds, "diagnostics are grouped by subject kind")
}

func TestEvaluate_UnknownRule(t *testing.T) {
	t.Parallel()

	l, _ := builtinLinter(t, false)
	_, err := l.Evaluate(context.Background(), NewContext(newManifest(t, ""), &layout.Layout{}, constants.KindRole), []string{"nope"})
	require.ErrorIs(t, err, uerrors.ErrUnknownRule)
}

func TestEvaluate_SealsRegistry(t *testing.T) {
	t.Parallel()

	l, r := builtinLinter(t, false)
	_, err := l.Evaluate(context.Background(), NewContext(newManifest(t, ""), &layout.Layout{}, constants.KindRole), []string{})
	require.NoError(t, err)
	require.ErrorIs(t, r.Register(unitRule("late", "")), uerrors.ErrInvalidRule)
}

func TestEvaluate_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l, _ := builtinLinter(t, false)
	_, err := l.Evaluate(ctx, NewContext(newManifest(t, ""), &layout.Layout{}, constants.KindRole), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestResult_Count(t *testing.T) {
	t.Parallel()

	r := &Result{Diagnostics: []Diagnostic{{Severity: SeverityError}, {Severity: SeverityWarning}, {Severity: SeverityWarning}}}
	assert.Equal(t, 1, r.Count(SeverityError))
	assert.Equal(t, 2, r.Count(SeverityWarning))
}

func TestDiagnostic_String(t *testing.T) {
	t.Parallel()

	d := Diagnostic{RuleID: "subdir-defined", Severity: SeverityError, Subject: "scripts/", Message: "not allowed"}
	assert.Equal(t, "error: [subdir-defined] scripts/: not allowed", d.String())
}
