package layout

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

// Default is one entry of defaults/main.yml. Value is the YAML rendering of
// the default, flow style for collections.
type Default struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func readDefaults(path string) ([]Default, *FileError, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is built from the unit root
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, uerrors.Tag(uerrors.ErrUnreadableLayout, err, "read "+constants.DefaultsPath)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &FileError{File: constants.DefaultsPath, Err: err.Error()}, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil, nil
	}
	mapping := doc.Content[0]
	if mapping.Kind == yaml.ScalarNode && mapping.Tag == "!!null" {
		return nil, nil, nil
	}
	if mapping.Kind != yaml.MappingNode {
		return nil, &FileError{File: constants.DefaultsPath, Err: "top level must be a mapping"}, nil
	}

	defaults := make([]Default, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		defaults = append(defaults, Default{
			Name:  mapping.Content[i].Value,
			Value: renderValue(mapping.Content[i+1]),
		})
	}
	return defaults, nil, nil
}

func renderValue(n *yaml.Node) string {
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!null" {
			return ""
		}
		return n.Value
	}
	flow := cloneFlow(n)
	out, err := yaml.Marshal(flow)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// cloneFlow copies n with every collection switched to flow style.
func cloneFlow(n *yaml.Node) *yaml.Node {
	c := *n
	c.HeadComment, c.LineComment, c.FootComment = "", "", ""
	if c.Kind == yaml.MappingNode || c.Kind == yaml.SequenceNode {
		c.Style = yaml.FlowStyle
	}
	c.Content = make([]*yaml.Node, len(n.Content))
	for i, child := range n.Content {
		c.Content[i] = cloneFlow(child)
	}
	return &c
}
