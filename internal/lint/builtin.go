package lint

import (
	"slices"
	"strings"

	"github.com/Leenie/ansible-universe/internal/constants"
	"github.com/Leenie/ansible-universe/internal/layout"
	"github.com/Leenie/ansible-universe/internal/manifest"
)

// Rule groups.
const (
	GroupManifest      = "manifest"
	GroupDocumentation = "documentation"
	GroupNaming        = "naming"
	GroupLayout        = "layout"
	GroupTask          = "task"
	GroupOwner         = "owner"
)

// Builtins returns the built-in rule catalogue in registration order.
func Builtins() []Rule {
	return []Rule{
		{
			ID:       "manifest-version",
			Group:    GroupManifest,
			Message:  "manifest does not declare a version",
			Severity: SeverityWarning,
			Unit: func(c *Context) bool {
				return !c.Manifest.VersionDefaulted && notBlank(c.Manifest.Version)
			},
		},
		{
			ID:       "manifest-author",
			Group:    GroupManifest,
			Message:  "manifest does not declare an author",
			Severity: SeverityWarning,
			Unit: func(c *Context) bool {
				return slices.ContainsFunc(c.Manifest.Authors, notBlank)
			},
		},
		{
			ID:       "manifest-license",
			Group:    GroupManifest,
			Message:  "manifest does not declare a license",
			Severity: SeverityWarning,
			Unit: func(c *Context) bool {
				return notBlank(c.Manifest.License)
			},
		},
		{
			ID:       "manifest-description",
			Group:    GroupManifest,
			Message:  "manifest does not declare a description",
			Severity: SeverityWarning,
			Unit: func(c *Context) bool {
				return notBlank(c.Manifest.Description)
			},
		},
		{
			ID:       "manifest-platforms",
			Group:    GroupManifest,
			Message:  "manifest does not declare any supported platform",
			Severity: SeverityWarning,
			Unit: func(c *Context) bool {
				return slices.ContainsFunc(c.Manifest.Platforms, func(p manifest.Platform) bool {
					return notBlank(p.Name)
				})
			},
		},
		{
			ID:       "manifest-include-when",
			Group:    GroupManifest,
			Message:  "include_when references a task file that does not exist",
			Severity: SeverityError,
			Unit: func(c *Context) bool {
				return len(missingIncludeWhen(c)) == 0
			},
			Explain: func(c *Context) string {
				return strings.Join(missingIncludeWhen(c), ", ")
			},
		},
		{
			ID:       "variable-documented",
			Group:    GroupDocumentation,
			Message:  "variable has no description",
			Severity: SeverityWarning,
			Variable: func(v manifest.Variable, _ *Context) bool {
				return notBlank(v.Description)
			},
		},
		{
			ID:       "variable-prefixed",
			Group:    GroupNaming,
			Message:  "variable name does not start with the unit prefix",
			Severity: SeverityWarning,
			Variable: func(v manifest.Variable, c *Context) bool {
				return strings.HasPrefix(v.Name, c.Manifest.Prefix+constants.VariableSeparator)
			},
		},
		{
			ID:       "subdir-defined",
			Group:    GroupLayout,
			Message:  "subdirectory is not part of the allowed layout",
			Severity: SeverityError,
			Subdirectory: func(name string, c *Context) bool {
				return slices.Contains(constants.AllowedSubdirs(c.Kind), name)
			},
		},
		{
			ID:       "layout-parsable",
			Group:    GroupLayout,
			Message:  "a task or defaults file could not be parsed",
			Severity: SeverityError,
			Unit: func(c *Context) bool {
				return len(c.Layout.Problems) == 0
			},
		},
		{
			ID:       "task-variables-declared",
			Group:    GroupDocumentation,
			Message:  "task references a variable missing from the manifest",
			Severity: SeverityWarning,
			Task: func(t layout.Task, c *Context) bool {
				for _, name := range c.VariablesUsedBy(t) {
					if !c.Manifest.HasVariable(name) {
						return false
					}
				}
				return true
			},
		},
		{
			ID:       "task-named",
			Group:    GroupTask,
			Message:  "task has no name",
			Severity: SeverityWarning,
			Task: func(t layout.Task, _ *Context) bool {
				return t.Name() != ""
			},
		},
		{
			ID:       "task-no-remote-user",
			Group:    GroupTask,
			Message:  "task overrides remote_user",
			Severity: SeverityError,
			Task: func(t layout.Task, _ *Context) bool {
				return !t.Has("remote_user")
			},
		},
		{
			ID:       "copy-has-owner",
			Group:    GroupOwner,
			Message:  "copy task does not set owner",
			Severity: SeverityWarning,
			Task:     moduleSetsOwner("copy"),
		},
		{
			ID:       "template-has-owner",
			Group:    GroupOwner,
			Message:  "template task does not set owner",
			Severity: SeverityWarning,
			Task:     moduleSetsOwner("template"),
		},
	}
}

func moduleSetsOwner(module string) TaskPredicate {
	return func(t layout.Task, _ *Context) bool {
		if !t.Invokes(module) {
			return true
		}
		_, ok := t.ModuleArgs(module)["owner"]
		return ok
	}
}

// missingIncludeWhen returns the include_when keys with no task file, sorted.
func missingIncludeWhen(c *Context) []string {
	var missing []string
	for _, file := range c.Manifest.IncludeWhenFiles() {
		if !c.Layout.HasTaskFile(file) {
			missing = append(missing, "tasks/"+file)
		}
	}
	return missing
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
