package layout

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// Keys that carry nested task lists.
//
//nolint:gochecknoglobals // read-only lookup table
var blockKeys = []string{"block", "rescue", "always"}

// Task keys that are not module invocations. Loop keywords of the with_*
// family are matched by prefix.
//
//nolint:gochecknoglobals // read-only lookup table
var taskKeywords = map[string]bool{
	"name": true, "when": true, "register": true, "loop": true, "loop_control": true,
	"tags": true, "notify": true, "listen": true, "become": true, "become_user": true,
	"become_method": true, "become_flags": true, "become_exe": true, "remote_user": true,
	"sudo": true, "sudo_user": true, "ignore_errors": true, "ignore_unreachable": true,
	"changed_when": true, "failed_when": true, "delegate_to": true, "delegate_facts": true,
	"run_once": true, "environment": true, "vars": true, "args": true, "until": true,
	"retries": true, "delay": true, "no_log": true, "check_mode": true, "diff": true,
	"local_action": true, "action": true, "async": true, "poll": true, "throttle": true,
	"timeout": true, "debugger": true, "collections": true, "module_defaults": true,
	"any_errors_fatal": true, "connection": true, "port": true,
	"block": true, "rescue": true, "always": true,
}

func isTaskKeyword(k string) bool {
	return taskKeywords[k] || strings.HasPrefix(k, "with_")
}

// Task is one entry of a task-definition file.
type Task struct {
	SourceFile string         `json:"source_file"`
	Index      int            `json:"index"`
	Attributes map[string]any `json:"attributes"`
}

// Name returns the descriptive name of the task, trimmed.
func (t Task) Name() string {
	s, _ := t.Attributes["name"].(string)
	return strings.TrimSpace(s)
}

// Has reports whether the task sets attribute key, whatever its value.
func (t Task) Has(key string) bool {
	_, ok := t.Attributes[key]
	return ok
}

// Module returns the module the task invokes, or an empty string. Modules
// named with a collection prefix (ansible.builtin.copy) are reported by their
// short name.
func (t Task) Module() string {
	keys := make([]string, 0, len(t.Attributes))
	for k := range t.Attributes {
		if !isTaskKeyword(k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	slices.Sort(keys)
	return shortName(keys[0])
}

// Invokes reports whether the task calls module, with or without a collection
// prefix. It looks at the module key itself, so task keywords never mask it.
func (t Task) Invokes(module string) bool {
	_, ok := t.moduleKey(module)
	return ok
}

func (t Task) moduleKey(module string) (string, bool) {
	if module == "" {
		return "", false
	}
	for k := range t.Attributes {
		if k == module || strings.HasSuffix(k, "."+module) {
			return k, true
		}
	}
	return "", false
}

// ModuleArgs returns the arguments passed to module. Both the mapping form
// and the free-form "key=value" string are understood, and entries of the
// args keyword are merged in.
func (t Task) ModuleArgs(module string) map[string]string {
	out := make(map[string]string)
	if k, ok := t.moduleKey(module); ok {
		mergeArgs(out, t.Attributes[k])
	}
	mergeArgs(out, t.Attributes["args"])
	return out
}

// Subject describes the task for diagnostics: its name, or the module it
// calls when it has none.
func (t Task) Subject() string {
	if name := t.Name(); name != "" {
		return fmt.Sprintf("%s#%d (%s)", t.SourceFile, t.Index, name)
	}
	if module := t.Module(); module != "" {
		return fmt.Sprintf("%s#%d [%s]", t.SourceFile, t.Index, module)
	}
	return fmt.Sprintf("%s#%d", t.SourceFile, t.Index)
}

func shortName(k string) string {
	if i := strings.LastIndex(k, "."); i >= 0 {
		return k[i+1:]
	}
	return k
}

func mergeArgs(out map[string]string, v any) {
	switch args := v.(type) {
	case map[string]any:
		for k, val := range args {
			out[k] = fmt.Sprint(val)
		}
	case string:
		for _, field := range strings.Fields(args) {
			if k, val, ok := strings.Cut(field, "="); ok {
				out[k] = val
			}
		}
	}
}

// readTaskFile parses tasks/<name>. A read failure is fatal; a parse failure
// is returned as a FileError so the scan can continue.
func readTaskFile(path, name string) ([]Task, *FileError, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is built from the unit root and a directory listing
	if err != nil {
		return nil, nil, uerrors.Tag(uerrors.ErrUnreadableLayout, err, "read tasks/"+name)
	}

	var entries []any
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, &FileError{File: "tasks/" + name, Err: err.Error()}, nil
	}

	var tasks []Task
	for _, entry := range entries {
		tasks = flattenTask(tasks, name, entry)
	}
	return tasks, nil, nil
}

// flattenTask appends entry and, for blocks, every nested task in document order.
func flattenTask(tasks []Task, file string, entry any) []Task {
	attrs, ok := entry.(map[string]any)
	if !ok {
		return tasks
	}
	tasks = append(tasks, Task{SourceFile: file, Index: len(tasks), Attributes: attrs})
	for _, key := range blockKeys {
		nested, ok := attrs[key].([]any)
		if !ok {
			continue
		}
		for _, n := range nested {
			tasks = flattenTask(tasks, file, n)
		}
	}
	return tasks
}
