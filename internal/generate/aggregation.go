package generate

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Leenie/ansible-universe/internal/constants"
	"github.com/Leenie/ansible-universe/internal/layout"
	"github.com/Leenie/ansible-universe/internal/manifest"
)

// IncludeKeyword is the task keyword used to pull in a task file.
const IncludeKeyword = "include_tasks"

// fallbackMaintainer is named in the platform guard when the manifest has no author.
const fallbackMaintainer = "the role maintainer"

// Aggregation renders tasks/main.yml: an optional platform guard followed by
// one include per task file, in task file order, each gated by its
// include_when condition when one is declared.
func Aggregation(m *manifest.Manifest, l *layout.Layout) ([]byte, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}

	if names := m.PlatformNames(); len(names) > 0 {
		seq.Content = append(seq.Content, platformGuard(m, names))
	}

	for _, file := range l.TaskFiles {
		task := mapping(IncludeKeyword, file)
		if cond := strings.TrimSpace(m.IncludeWhen[file]); cond != "" {
			task.Content = append(task.Content, scalar("when"), scalar(cond))
		}
		seq.Content = append(seq.Content, task)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n---\n", constants.GeneratedMarker)
	if len(seq.Content) == 0 {
		buf.WriteString("[]\n")
		return buf.Bytes(), nil
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return nil, fmt.Errorf("encode aggregation: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode aggregation: %w", err)
	}
	return buf.Bytes(), nil
}

func platformGuard(m *manifest.Manifest, names []string) *yaml.Node {
	maintainer := m.Author()
	if maintainer == "" {
		maintainer = fallbackMaintainer
	}

	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + strings.ReplaceAll(n, "'", `\'`) + "'"
	}

	guard := mapping("name", "assert the target platform is supported")
	guard.Content = append(guard.Content,
		scalar("fail"),
		mapping("msg", fmt.Sprintf("unsupported platform -- please contact %s for support", maintainer)),
		scalar("when"),
		scalar("ansible_distribution not in ["+strings.Join(quoted, ", ")+"]"),
	)
	return guard
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func mapping(key, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalar(key), scalar(value)}}
}
