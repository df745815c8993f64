package layout

import (
	"slices"
	"strings"
)

// Usage is one reference to a variable from a task attribute value.
type Usage struct {
	Name       string `json:"name"`
	SourceFile string `json:"source_file"`
	TaskIndex  int    `json:"task_index"`
}

// Task keys whose values are bare conditional expressions, without braces.
//
//nolint:gochecknoglobals // read-only lookup table
var conditionKeys = map[string]bool{
	"when": true, "changed_when": true, "failed_when": true, "until": true,
}

// Jinja operators and literals that look like identifiers.
//
//nolint:gochecknoglobals // read-only lookup table
var jinjaKeywords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true, "if": true,
	"else": true, "recursive": true,
}

// Names resolved by the runtime rather than the unit.
//
//nolint:gochecknoglobals // read-only lookup table
var runtimeNames = map[string]bool{
	"item": true, "hostvars": true, "groups": true, "group_names": true,
	"inventory_hostname": true, "inventory_hostname_short": true, "inventory_dir": true,
	"inventory_file": true, "play_hosts": true, "playbook_dir": true, "role_path": true,
	"role_name": true, "environment": true, "omit": true, "lookup": true, "query": true,
	"true": true, "false": true, "none": true, "True": true, "False": true, "None": true,
	"range": true, "vars": true,
}

// collectUsages extracts variable references from "{{ ... }}" expressions and
// from the bare expressions of conditional keys.
// Variables defined by the tasks themselves (register, set_fact) and runtime
// facts are not reported.
func collectUsages(tasks []Task) []Usage {
	local := localNames(tasks)
	var usages []Usage
	for _, t := range tasks {
		var names []string
		own := make(map[string]any, len(t.Attributes))
		for k, v := range t.Attributes {
			if !slices.Contains(blockKeys, k) {
				own[k] = v
			}
		}
		keys := make([]string, 0, len(own))
		for k := range own {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			bare := conditionKeys[k]
			walkStrings(own[k], func(s string) {
				names = append(names, referencedNames(s, bare)...)
			})
		}
		var seen []string
		for _, name := range names {
			if local[name] || isRuntimeName(name) || slices.Contains(seen, name) {
				continue
			}
			seen = append(seen, name)
			usages = append(usages, Usage{Name: name, SourceFile: t.SourceFile, TaskIndex: t.Index})
		}
	}
	return usages
}

// referencedNames returns the identifiers referenced by the "{{ ... }}"
// expressions of s. When bare is set and s has no braces, s itself is the
// expression.
func referencedNames(s string, bare bool) []string {
	if !strings.Contains(s, "{{") {
		if bare {
			return expressionNames(s)
		}
		return nil
	}
	var names []string
	for {
		start := strings.Index(s, "{{")
		if start < 0 {
			return names
		}
		s = s[start+2:]
		end := strings.Index(s, "}}")
		if end < 0 {
			return append(names, expressionNames(s)...)
		}
		names = append(names, expressionNames(s[:end])...)
		s = s[end+2:]
	}
}

// expressionNames scans a Jinja expression for variable references. Filter
// and test names, attribute accesses, function calls, keyword argument names,
// string literals and numbers are skipped.
func expressionNames(expr string) []string {
	var names []string
	var prev byte
	afterIs := false
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '\'' || c == '"':
			j := i + 1
			for j < len(expr) && expr[j] != c {
				if expr[j] == '\\' {
					j++
				}
				j++
			}
			i = j + 1
			prev, afterIs = c, false
		case isDigit(c):
			j := i
			for j < len(expr) && (isIdentChar(expr[j]) || expr[j] == '.') {
				j++
			}
			i = j
			prev, afterIs = '0', false
		case isIdentStart(c):
			j := i
			for j < len(expr) && isIdentChar(expr[j]) {
				j++
			}
			word := expr[i:j]
			i = j
			switch {
			case word == "is":
				afterIs = true
			case afterIs && word == "not":
			case prev == '.' || prev == '|' || afterIs || notVariable(expr[j:]) || jinjaKeywords[word]:
				afterIs = false
			default:
				names = append(names, word)
				afterIs = false
			}
			prev = 'a'
		default:
			i++
			prev, afterIs = c, false
		}
	}
	return names
}

// notVariable reports whether the text after an identifier makes it a
// function call or a keyword argument name.
func notVariable(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(rest, "(") {
		return true
	}
	return strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==")
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isIdentChar(c byte) bool { return isIdentStart(c) || isDigit(c) }

func isRuntimeName(name string) bool {
	return runtimeNames[name] || strings.HasPrefix(name, "ansible_")
}

func localNames(tasks []Task) map[string]bool {
	names := make(map[string]bool)
	for _, t := range tasks {
		if r, ok := t.Attributes["register"].(string); ok {
			names[strings.TrimSpace(r)] = true
		}
		for _, key := range []string{"set_fact", "ansible.builtin.set_fact", "vars"} {
			if facts, ok := t.Attributes[key].(map[string]any); ok {
				for k := range facts {
					names[k] = true
				}
			}
		}
		if lc, ok := t.Attributes["loop_control"].(map[string]any); ok {
			if v, ok := lc["loop_var"].(string); ok {
				names[v] = true
			}
		}
	}
	return names
}

// walkStrings calls fn for every string reachable from v, visiting map
// entries in key order so the traversal is deterministic.
func walkStrings(v any, fn func(string)) {
	switch val := v.(type) {
	case string:
		fn(val)
	case []any:
		for _, item := range val {
			walkStrings(item, fn)
		}
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			walkStrings(val[k], fn)
		}
	}
}
