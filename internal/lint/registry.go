package lint

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// Registry holds rules in registration order. Registration happens during
// startup; once sealed the registry rejects further registrations and is safe
// for concurrent reads.
type Registry struct {
	mu     sync.RWMutex
	rules  []Rule
	index  map[string]int
	sealed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a rule. It fails with ErrDuplicateRule when the id is taken
// and with ErrInvalidRule when the descriptor is incomplete or the registry is sealed.
func (r *Registry) Register(rule Rule) error {
	if strings.TrimSpace(rule.ID) == "" {
		return fmt.Errorf("%w: empty id", uerrors.ErrInvalidRule)
	}
	if rule.predicateCount() != 1 {
		return fmt.Errorf("%w: %s: exactly one predicate must be set", uerrors.ErrInvalidRule, rule.ID)
	}
	if rule.Severity != SeverityWarning && rule.Severity != SeverityError {
		return fmt.Errorf("%w: %s: unknown severity %q", uerrors.ErrInvalidRule, rule.ID, rule.Severity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: %s: registry is sealed", uerrors.ErrInvalidRule, rule.ID)
	}
	if _, exists := r.index[rule.ID]; exists {
		return fmt.Errorf("%w: %s", uerrors.ErrDuplicateRule, rule.ID)
	}
	r.index[rule.ID] = len(r.rules)
	r.rules = append(r.rules, rule)
	return nil
}

// MustRegister is Register for startup code where a failure is a programming error.
func (r *Registry) MustRegister(rules ...Rule) {
	for _, rule := range rules {
		if err := r.Register(rule); err != nil {
			panic(err)
		}
	}
}

// Seal ends the registration phase.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Get returns the rule registered under id.
func (r *Registry) Get(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return Rule{}, false
	}
	return r.rules[i], true
}

// Rules returns all rules in registration order.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.rules)
}

// Groups returns the distinct rule groups in order of first registration.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var groups []string
	for _, rule := range r.rules {
		if rule.Group != "" && !slices.Contains(groups, rule.Group) {
			groups = append(groups, rule.Group)
		}
	}
	return groups
}

// Selection picks rules by id or group. Enable adds to the default set and
// Disable removes from it; Disable wins when both name a rule.
type Selection struct {
	Enable  []string
	Disable []string

	// Only, when non-empty, replaces the default set.
	Only []string
}

// Select resolves a selection to rule ids in registration order. An entry
// that matches neither an id nor a group fails with ErrUnknownRule.
func (r *Registry) Select(sel Selection) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make(map[string]bool, len(r.rules))
	if len(sel.Only) == 0 {
		for _, rule := range r.rules {
			enabled[rule.ID] = rule.DefaultEnabled()
		}
	} else if err := r.mark(enabled, sel.Only, true); err != nil {
		return nil, err
	}
	if err := r.mark(enabled, sel.Enable, true); err != nil {
		return nil, err
	}
	if err := r.mark(enabled, sel.Disable, false); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		if enabled[rule.ID] {
			ids = append(ids, rule.ID)
		}
	}
	return ids, nil
}

func (r *Registry) mark(enabled map[string]bool, selectors []string, on bool) error {
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if i, ok := r.index[sel]; ok {
			enabled[r.rules[i].ID] = on
			continue
		}
		matched := false
		for _, rule := range r.rules {
			if rule.Group == sel {
				enabled[rule.ID] = on
				matched = true
			}
		}
		if !matched {
			return fmt.Errorf("%w: %s", uerrors.ErrUnknownRule, sel)
		}
	}
	return nil
}

//nolint:gochecknoglobals // process-wide registry, populated once
var (
	defaultRegistry     *Registry
	defaultRegistryErr  error
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry holding the built-in rules.
// Further rules may be registered until the first evaluation seals it.
// Registration errors, such as a duplicate id, are returned on every call.
func Default() (*Registry, error) {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		for _, rule := range Builtins() {
			if err := r.Register(rule); err != nil {
				defaultRegistryErr = err
				return
			}
		}
		defaultRegistry = r
	})
	return defaultRegistry, defaultRegistryErr
}
