package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// recorder is an action factory that logs the targets it runs.
type recorder struct {
	ran  []string
	fail map[string]error
}

func (r *recorder) action(name string) Action {
	return func(context.Context, *Session, Input) (Outcome, error) {
		r.ran = append(r.ran, name)
		if err := r.fail[name]; err != nil {
			return Outcome{}, err
		}
		return Outcome{Detail: name + " done"}, nil
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(t.TempDir(), Options{})
	require.NoError(t, err)
	return s
}

func TestResolve_BuiltinOrder(t *testing.T) {
	t.Parallel()

	e, err := NewDefault(Deps{})
	require.NoError(t, err)

	tests := []struct {
		target string
		want   []string
	}{
		{TargetPublish, []string{TargetDist, TargetCheck, TargetPackage, TargetPublish}},
		{TargetPackage, []string{TargetDist, TargetCheck, TargetPackage}},
		{TargetCheck, []string{TargetDist, TargetCheck}},
		{TargetDist, []string{TargetDist}},
		{TargetInit, []string{TargetInit}},
		{TargetShow, []string{TargetShow}},
		{TargetDistclean, []string{TargetDistclean}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			order, err := e.Resolve(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, order)
		})
	}
}

func TestResolve_Diamond(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	e, err := New(
		Target{Name: "base", Action: r.action("base")},
		Target{Name: "left", Prerequisites: []string{"base"}, Action: r.action("left")},
		Target{Name: "right", Prerequisites: []string{"base"}, Action: r.action("right")},
		Target{Name: "top", Prerequisites: []string{"right", "left"}, Action: r.action("top")},
	)
	require.NoError(t, err)

	order, err := e.Resolve("top")
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "right", "left", "top"}, order)
}

func TestResolve_UnknownTarget(t *testing.T) {
	t.Parallel()

	e, err := NewDefault(Deps{})
	require.NoError(t, err)

	_, err = e.Resolve("deploy")
	require.ErrorIs(t, err, uerrors.ErrUnknownTarget)
	assert.Equal(t, uerrors.ExitInvalidInput, uerrors.ExitCode(err))

	res := e.Run(context.Background(), newTestSession(t), "deploy")
	require.ErrorIs(t, res.Err, uerrors.ErrUnknownTarget)
	assert.Empty(t, res.Steps)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, *Session, Input) (Outcome, error) { return Outcome{}, nil }

	tests := []struct {
		name    string
		targets []Target
		wantErr error
	}{
		{
			name:    "cycle",
			targets: []Target{{Name: "a", Prerequisites: []string{"b"}, Action: noop}, {Name: "b", Prerequisites: []string{"a"}, Action: noop}},
			wantErr: uerrors.ErrDependencyCycle,
		},
		{
			name:    "self cycle",
			targets: []Target{{Name: "a", Prerequisites: []string{"a"}, Action: noop}},
			wantErr: uerrors.ErrDependencyCycle,
		},
		{
			name:    "unknown prerequisite",
			targets: []Target{{Name: "a", Prerequisites: []string{"missing"}, Action: noop}},
			wantErr: uerrors.ErrUnknownTarget,
		},
		{
			name:    "duplicate",
			targets: []Target{{Name: "a", Action: noop}, {Name: "a", Action: noop}},
			wantErr: uerrors.ErrInvalidTarget,
		},
		{
			name:    "missing action",
			targets: []Target{{Name: "a"}},
			wantErr: uerrors.ErrInvalidTarget,
		},
		{
			name:    "destructive with prerequisites",
			targets: []Target{{Name: "a", Action: noop}, {Name: "b", Destructive: true, Prerequisites: []string{"a"}, Action: noop}},
			wantErr: uerrors.ErrInvalidTarget,
		},
		{
			name:    "destructive as prerequisite",
			targets: []Target{{Name: "a", Destructive: true, Action: noop}, {Name: "b", Prerequisites: []string{"a"}, Action: noop}},
			wantErr: uerrors.ErrInvalidTarget,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.targets...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRun_ShortCircuit(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := &recorder{fail: map[string]error{"b": boom}}
	e, err := New(
		Target{Name: "a", Action: r.action("a")},
		Target{Name: "b", Prerequisites: []string{"a"}, Action: r.action("b")},
		Target{Name: "c", Prerequisites: []string{"b"}, Action: r.action("c")},
	)
	require.NoError(t, err)

	res := e.Run(context.Background(), newTestSession(t), "c")
	require.ErrorIs(t, res.Err, boom)
	assert.False(t, res.Succeeded())
	assert.Equal(t, "b", res.FailedTarget)
	assert.Equal(t, []string{"a", "b"}, r.ran)
	assert.Equal(t, []string{"a", "b"}, res.Executed())

	step, ok := res.Step("c")
	require.True(t, ok)
	assert.Equal(t, constants.TargetStatusNotRun, step.Status)
	step, _ = res.Step("b")
	assert.Equal(t, constants.TargetStatusFailed, step.Status)
}

func TestRun_Memoized(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	e, err := New(
		Target{Name: "a", Mutates: true, Action: r.action("a")},
		Target{Name: "b", Prerequisites: []string{"a"}, Action: r.action("b")},
	)
	require.NoError(t, err)
	s := newTestSession(t)

	first := e.Run(context.Background(), s, "a")
	require.NoError(t, first.Err)
	second := e.Run(context.Background(), s, "b")
	require.NoError(t, second.Err)

	assert.Equal(t, []string{"a", "b"}, r.ran)
	step, _ := second.Step("a")
	assert.True(t, step.Reused)
	assert.Equal(t, []string{"b"}, second.Executed())
}

func TestRun_ForcedAfterChange(t *testing.T) {
	t.Parallel()

	var forced []bool
	e, err := New(
		Target{Name: "gen", Mutates: true, Action: func(context.Context, *Session, Input) (Outcome, error) {
			return Outcome{}, nil
		}},
		Target{Name: "use", Prerequisites: []string{"gen"}, Action: func(_ context.Context, _ *Session, in Input) (Outcome, error) {
			forced = append(forced, in.Forced)
			return Outcome{}, nil
		}},
	)
	require.NoError(t, err)

	res := e.Run(context.Background(), newTestSession(t), "use")
	require.NoError(t, res.Err)
	assert.Equal(t, []bool{true}, forced)
}

func TestRun_DestructiveClearsMemo(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	e, err := New(
		Target{Name: "build", Mutates: true, Action: r.action("build")},
		Target{Name: "clean", Mutates: true, Destructive: true, Action: r.action("clean")},
	)
	require.NoError(t, err)
	s := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, e.Run(ctx, s, "build").Err)
	require.NoError(t, e.Run(ctx, s, "clean").Err)
	res := e.Run(ctx, s, "build")
	require.NoError(t, res.Err)

	assert.Equal(t, []string{"build", "clean", "build"}, r.ran)
	step, _ := res.Step("build")
	assert.False(t, step.Reused)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	e, err := New(
		Target{Name: "a", Action: r.action("a")},
		Target{Name: "b", Prerequisites: []string{"a"}, Action: r.action("b")},
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Run(ctx, newTestSession(t), "b")
	require.ErrorIs(t, res.Err, context.Canceled)
	assert.Equal(t, "a", res.FailedTarget)
	assert.Empty(t, r.ran)
	assert.Len(t, res.Steps, 2)
}
