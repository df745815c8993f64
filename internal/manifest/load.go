package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/fsutil"
)

// Recognized top-level keys.
const (
	keySchemaVersion = "schema_version"
	keyVersion       = "version"
	keyPrefix        = "prefix"
	keyVariables     = "variables"
	keyInconditions  = "inconditions"
	keyIncludeWhen   = "include_when"
	keyGalaxyInfo    = "galaxy_info"
	keyDependencies  = "dependencies"
)

//nolint:gochecknoglobals // read-only lookup table
var knownKeys = map[string]bool{
	keySchemaVersion: true,
	keyVersion:       true,
	keyPrefix:        true,
	keyVariables:     true,
	keyInconditions:  true,
	keyIncludeWhen:   true,
	keyGalaxyInfo:    true,
	keyDependencies:  true,
}

// document is the on-disk shape. The root node is kept for lossless Save.
type document struct {
	root *yaml.Node
}

type galaxyInfo struct {
	RoleName    string        `yaml:"role_name"`
	Author      authorList    `yaml:"author"`
	License     string        `yaml:"license"`
	Description string        `yaml:"description"`
	Platforms   []platformDoc `yaml:"platforms"`
}

type platformDoc struct {
	Name     string   `yaml:"name"`
	Versions []string `yaml:"versions"`
}

// authorList accepts either a scalar or a sequence of scalars.
type authorList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *authorList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || node.Value == "" {
			*a = nil
			return nil
		}
		*a = authorList{node.Value}
		return nil
	case yaml.SequenceNode:
		var out []string
		if err := node.Decode(&out); err != nil {
			return err
		}
		*a = out
		return nil
	default:
		return fmt.Errorf("line %d: author must be a string or a list of strings", node.Line)
	}
}

// Load reads the manifest of the unit rooted at root. The unit name is the
// base name of root unless galaxy_info.role_name overrides it.
//
// Load fails with uerrors.ErrMalformedManifest on missing or structurally invalid
// input and with uerrors.ErrIncompatibleVersion when schema_version is newer
// than constants.ManifestSchemaVersion.
func Load(root string) (*Manifest, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrMalformedManifest, err, "resolve unit root")
	}
	path := filepath.Join(abs, constants.ManifestPath)

	data, err := os.ReadFile(path) //#nosec G304 -- path is constructed from the unit root
	if err != nil {
		return nil, uerrors.Tag(uerrors.ErrMalformedManifest, err, "read "+constants.ManifestPath)
	}

	m, err := Parse(data, filepath.Base(abs))
	if err != nil {
		return nil, err
	}
	m.path = path
	return m, nil
}

// Parse decodes manifest bytes. defaultName is used when the manifest does not name the unit.
func Parse(data []byte, defaultName string) (*Manifest, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, uerrors.Tag(uerrors.ErrMalformedManifest, err, "decode yaml")
	}

	mapping, err := rootMapping(&root)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		Name:          defaultName,
		SchemaVersion: 1,
		doc:           &document{root: &root},
	}

	if err := decodeTopLevel(mapping, m); err != nil {
		return nil, err
	}

	if m.SchemaVersion > constants.ManifestSchemaVersion {
		return nil, fmt.Errorf("%w: schema_version %d, supported %d",
			uerrors.ErrIncompatibleVersion, m.SchemaVersion, constants.ManifestSchemaVersion)
	}

	if m.Version == "" {
		m.Version = constants.DefaultUnitVersion
		m.VersionDefaulted = true
	}
	if m.Prefix == "" {
		m.Prefix = m.Name
	}
	return m, nil
}

// rootMapping returns the top-level mapping node. An empty document is
// treated as an empty mapping.
func rootMapping(root *yaml.Node) (*yaml.Node, error) {
	if root.Kind == 0 {
		root.Kind = yaml.DocumentNode
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) != 1 {
		return nil, fmt.Errorf("%w: expected a single YAML document", uerrors.ErrMalformedManifest)
	}
	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		top.Kind = yaml.MappingNode
		top.Tag = "!!map"
		top.Value = ""
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: top level must be a mapping", uerrors.ErrMalformedManifest, top.Line)
	}
	return top, nil
}

func decodeTopLevel(mapping *yaml.Node, m *Manifest) error {
	var inconditions, includeWhen map[string]string

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if !knownKeys[key.Value] {
			m.Extra = append(m.Extra, key.Value)
			continue
		}

		var err error
		switch key.Value {
		case keySchemaVersion:
			err = value.Decode(&m.SchemaVersion)
		case keyVersion:
			err = decodeScalar(value, &m.Version)
		case keyPrefix:
			err = decodeScalar(value, &m.Prefix)
		case keyVariables:
			m.Variables, err = decodeVariables(value)
		case keyInconditions:
			err = value.Decode(&inconditions)
		case keyIncludeWhen:
			err = value.Decode(&includeWhen)
		case keyGalaxyInfo:
			err = decodeGalaxyInfo(value, m)
		}
		if err != nil {
			return uerrors.Tag(uerrors.ErrMalformedManifest, err, key.Value)
		}
	}

	// include_when is the canonical spelling; inconditions is accepted for older manifests.
	if len(inconditions)+len(includeWhen) > 0 {
		m.IncludeWhen = make(map[string]string, len(inconditions)+len(includeWhen))
		for k, v := range inconditions {
			m.IncludeWhen[k] = v
		}
		for k, v := range includeWhen {
			m.IncludeWhen[k] = v
		}
	}
	return nil
}

func decodeScalar(node *yaml.Node, out *string) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*out = ""
		return nil
	}
	*out = node.Value
	return nil
}

// decodeVariables walks the mapping in document order so the catalogue keeps insertion order.
func decodeVariables(node *yaml.Node) ([]Variable, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: variables must map names to descriptions", node.Line)
	}
	vars := make([]Variable, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if seen[name] {
			return nil, fmt.Errorf("line %d: variable %q declared twice", node.Content[i].Line, name)
		}
		seen[name] = true

		var desc string
		if err := decodeScalar(node.Content[i+1], &desc); err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		vars = append(vars, Variable{Name: name, Description: desc})
	}
	return vars, nil
}

func decodeGalaxyInfo(node *yaml.Node, m *Manifest) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	var info galaxyInfo
	if err := node.Decode(&info); err != nil {
		return err
	}
	if info.RoleName != "" {
		m.Name = info.RoleName
	}
	m.Authors = info.Author
	m.License = info.License
	m.Description = info.Description
	for _, p := range info.Platforms {
		m.Platforms = append(m.Platforms, Platform(p))
	}
	return nil
}

// Exists reports whether the unit rooted at root has a manifest.
func Exists(root string) bool {
	return fsutil.Exists(filepath.Join(root, constants.ManifestPath))
}
