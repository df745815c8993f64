package manifest

import (
	"bytes"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/fsutil"
)

// WithVersion returns a copy of m whose document declares version.
// Unknown keys, comments and key order of the original document are kept.
func (m *Manifest) WithVersion(version string) *Manifest {
	out := *m
	out.Version = version
	out.VersionDefaulted = false
	if m.doc != nil {
		out.doc = &document{root: cloneNode(m.doc.root)}
		setScalar(out.doc.root.Content[0], keyVersion, version)
	}
	return &out
}

// Marshal encodes the manifest document.
func (m *Manifest) Marshal() ([]byte, error) {
	if m.doc == nil {
		return nil, fmt.Errorf("%w: manifest has no backing document", uerrors.ErrMalformedManifest)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.doc.root); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the manifest to meta/main.yml under root.
func (m *Manifest) Save(root string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	path := filepath.Join(root, constants.ManifestPath)
	if err := fsutil.AtomicWrite(path, data); err != nil {
		return uerrors.Tag(uerrors.ErrGenerationIO, err, constants.ManifestPath)
	}
	m.path = path
	return nil
}

// Skeleton returns the manifest written by init for a new unit.
func Skeleton(name string) *Manifest {
	const tmpl = `version: %q
prefix: %q
galaxy_info:
  author: ""
  description: ""
  license: ""
  platforms: []
variables: {}
include_when: {}
dependencies: []
`
	source := fmt.Sprintf(tmpl, constants.DefaultUnitVersion, name)
	m, err := Parse([]byte(source), name)
	if err != nil {
		// The template is a constant; a failure here is a programming error.
		panic(err)
	}
	return m
}

func setScalar(mapping *yaml.Node, key, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
			return
		}
	}
	mapping.Content = append([]*yaml.Node{
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
	}, mapping.Content...)
}

func cloneNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Content != nil {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = cloneNode(child)
		}
	}
	c.Alias = cloneNode(n.Alias)
	return &c
}
