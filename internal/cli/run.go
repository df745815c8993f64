package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Leenie/ansible-universe/internal/config"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/lifecycle"
	"github.com/Leenie/ansible-universe/internal/lint"
	"github.com/Leenie/ansible-universe/internal/logging"
	"github.com/Leenie/ansible-universe/internal/pack"
	"github.com/Leenie/ansible-universe/internal/publish"
	"github.com/Leenie/ansible-universe/internal/signal"
	"github.com/Leenie/ansible-universe/internal/syntax"
	"github.com/Leenie/ansible-universe/internal/tui"
	"github.com/Leenie/ansible-universe/internal/unitlock"
)

// invocation is everything a run of targets needs, resolved from flags and config.
type invocation struct {
	root   string
	cfg    *config.Config
	rules  *lint.Registry
	ruleID []string
	out    tui.Output
}

func prepare(cmd *cobra.Command, flags *GlobalFlags) (context.Context, *invocation, error) {
	out, err := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
	if err != nil {
		return nil, nil, err
	}
	logger := InitLogger(flags.Verbose, flags.Quiet, cmd.ErrOrStderr())
	ctx := logger.WithContext(cmd.Context())

	root, err := filepath.Abs(flags.Directory)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve unit directory: %w", err)
	}

	cfg, err := config.LoadWithOverrides(ctx, root, &config.Overrides{
		Repository: flags.Repository,
		Exclude:    flags.Exclude,
		Enable:     flags.Enable,
		Disable:    flags.Disable,
	})
	if err != nil {
		return nil, nil, err
	}

	reg, err := lint.Default()
	if err != nil {
		return nil, nil, err
	}
	ids, err := reg.Select(lint.Selection{Enable: cfg.Rules.Enable, Disable: cfg.Rules.Disable})
	if err != nil {
		return nil, nil, err
	}

	return ctx, &invocation{root: root, cfg: cfg, rules: reg, ruleID: ids, out: out}, nil
}

func newEngine(inv *invocation, info BuildInfo) (*lifecycle.Engine, error) {
	cfg := inv.cfg
	deps := lifecycle.Deps{
		Linter:   lint.NewLinter(inv.rules, lint.WithParallel(cfg.Lint.Parallel)),
		Packager: pack.NewPackager(),
		Publisher: publish.NewPublisher(publish.Options{
			Timeout:   cfg.Publish.Timeout,
			Insecure:  cfg.Publish.Insecure,
			UserAgent: "universe/" + formatVersionShort(info),
		}),
	}
	if cfg.Syntax.Enabled {
		deps.Syntax = syntax.NewChecker(cfg.Syntax.Command, cfg.Syntax.Timeout, nil)
	}
	return lifecycle.NewDefault(deps)
}

func formatVersionShort(info BuildInfo) string {
	if info.Version == "" {
		return "dev"
	}
	return info.Version
}

// runTargets runs each requested target in order and stops at the first failure.
func runTargets(cmd *cobra.Command, flags *GlobalFlags, info BuildInfo, targets []string) error {
	ctx, inv, err := prepare(cmd, flags)
	if err != nil {
		return err
	}
	engine, err := newEngine(inv, info)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if !engine.Has(t) {
			err := fmt.Errorf("%w: %s (known targets: %s)", uerrors.ErrUnknownTarget, t, strings.Join(targetNames(engine), ", "))
			inv.out.Error(err)
			return &ReportedError{Err: err}
		}
	}

	log := zerolog.Ctx(ctx).With().
		Str("component", "cli").
		Str("unit", inv.root).
		Logger()
	ctx = log.WithContext(ctx)
	log.Debug().
		Strs("targets", targets).
		Str("repository", logging.SafeValue("repository", inv.cfg.Repository)).
		Strs("rules", inv.ruleID).
		Msg("starting")

	if slices.Contains(targets, lifecycle.TargetInit) {
		if err := os.MkdirAll(inv.root, 0o755); err != nil {
			return fmt.Errorf("create unit directory: %w", err)
		}
	}

	if needsLock(targets) {
		lock, err := unitlock.Acquire(inv.root)
		if err != nil {
			inv.out.Error(err)
			return &ReportedError{Err: err}
		}
		defer func() { _ = lock.Release() }()
	}

	handler := signal.NewHandler(ctx)
	defer handler.Stop()
	ctx = handler.Context()

	session, err := lifecycle.NewSession(inv.root, lifecycle.Options{
		Kind:       inv.cfg.Kind,
		Excludes:   inv.cfg.Exclude,
		Repository: inv.cfg.Repository,
		Rules:      inv.ruleID,
		CleanAll:   flags.All,
	})
	if err != nil {
		return err
	}

	for _, t := range targets {
		res := engine.Run(ctx, session, t)
		if err := report(inv.out, res, flags.Readme); err != nil {
			return err
		}
		if res.Err != nil {
			if sig := handler.Received(); sig != nil {
				log.Warn().Str("signal", sig.String()).Msg("interrupted")
			}
			inv.out.Error(res.Err)
			return &ReportedError{Err: res.Err}
		}
	}
	return nil
}

func targetNames(e *lifecycle.Engine) []string {
	targets := e.Targets()
	names := make([]string, 0, len(targets))
	for _, t := range targets {
		names = append(names, t.Name)
	}
	return names
}

// needsLock is false when every target only reads the unit.
func needsLock(targets []string) bool {
	for _, t := range targets {
		if t != lifecycle.TargetShow {
			return true
		}
	}
	return false
}

// report prints one run. A successful show prints its summary, or the
// rendered description file with --readme, instead of the step list.
func report(out tui.Output, res *lifecycle.RunResult, readme bool) error {
	if res.Target == lifecycle.TargetShow && res.Err == nil {
		step, _ := res.Step(lifecycle.TargetShow)
		if summary, ok := step.Report.(*lifecycle.Summary); ok {
			if readme {
				return out.Markdown(summary.Readme)
			}
			out.Summary(summary)
			return nil
		}
	}
	out.Run(res)
	return nil
}

// selectionState marks the selected rule ids as enabled.
func selectionState(ids []string) map[string]bool {
	state := make(map[string]bool, len(ids))
	for _, id := range ids {
		state[id] = true
	}
	return state
}
