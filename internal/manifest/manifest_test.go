package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
)

const fullManifest = `---
version: 1.2.0
prefix: web
galaxy_info:
  author: jane
  license: MIT
  description: Web server role
  platforms:
    - name: Debian
      versions: [9, 10]
    - name: Ubuntu
variables:
  web_port: listening port
  web_root: document root
  web_user:
inconditions:
  a.yml: cond_a
include_when:
  b.yml: cond_b
custom_key:
  nested: true
`

func writeManifest(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, constants.MetaDir)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, constants.ManifestPath), []byte(content), 0o600))
}

func TestLoad_Full(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "webserver")
	writeManifest(t, root, fullManifest)

	m, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "webserver", m.Name)
	assert.Equal(t, "1.2.0", m.Version)
	assert.False(t, m.VersionDefaulted)
	assert.Equal(t, "web", m.Prefix)
	assert.Equal(t, []string{"jane"}, m.Authors)
	assert.Equal(t, "MIT", m.License)
	assert.Equal(t, "Web server role", m.Description)
	require.Len(t, m.Platforms, 2)
	assert.Equal(t, Platform{Name: "Debian", Versions: []string{"9", "10"}}, m.Platforms[0])
	assert.Equal(t, []string{"Debian", "Ubuntu"}, m.PlatformNames())

	assert.Equal(t, []Variable{
		{Name: "web_port", Description: "listening port"},
		{Name: "web_root", Description: "document root"},
		{Name: "web_user", Description: ""},
	}, m.Variables, "insertion order is preserved")

	assert.Equal(t, map[string]string{"a.yml": "cond_a", "b.yml": "cond_b"}, m.IncludeWhen)
	assert.Equal(t, []string{"a.yml", "b.yml"}, m.IncludeWhenFiles())
	assert.Equal(t, []string{"custom_key"}, m.Extra)
	assert.Equal(t, filepath.Join(root, constants.ManifestPath), m.Path())
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte("galaxy_info:\n  author: [a, b]\n"), "db")
	require.NoError(t, err)

	assert.Equal(t, "db", m.Name)
	assert.Equal(t, constants.DefaultUnitVersion, m.Version)
	assert.True(t, m.VersionDefaulted)
	assert.Equal(t, "db", m.Prefix, "prefix defaults to the unit name")
	assert.Equal(t, []string{"a", "b"}, m.Authors)
	assert.Equal(t, "a", m.Author())
}

func TestParse_EmptyDocument(t *testing.T) {
	t.Parallel()

	m, err := Parse(nil, "empty")
	require.NoError(t, err)
	assert.Equal(t, "empty", m.Name)
	assert.Equal(t, constants.DefaultUnitVersion, m.Version)
	assert.Empty(t, m.Variables)
}

func TestParse_RoleNameOverride(t *testing.T) {
	t.Parallel()

	m, err := Parse([]byte("galaxy_info:\n  role_name: nginx\n"), "dir-name")
	require.NoError(t, err)
	assert.Equal(t, "nginx", m.Name)
	assert.Equal(t, "nginx", m.Prefix)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"invalid yaml", "version: [unclosed", uerrors.ErrMalformedManifest},
		{"top level list", "- a\n- b\n", uerrors.ErrMalformedManifest},
		{"variables as list", "variables: [a, b]\n", uerrors.ErrMalformedManifest},
		{"duplicate variable", "variables:\n  a: x\n  a: y\n", uerrors.ErrMalformedManifest},
		{"author as map", "galaxy_info:\n  author: {x: 1}\n", uerrors.ErrMalformedManifest},
		{"bad schema version", "schema_version: abc\n", uerrors.ErrMalformedManifest},
		{"newer schema", "schema_version: 2\n", uerrors.ErrIncompatibleVersion},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tc.input), "unit")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, uerrors.ErrMalformedManifest)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWithVersion_PreservesUnknownKeys(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "webserver")
	writeManifest(t, root, fullManifest)
	m, err := Load(root)
	require.NoError(t, err)

	bumped := m.WithVersion("2.0.0")
	assert.Equal(t, "1.2.0", m.Version, "original is not mutated")
	require.NoError(t, bumped.Save(root))

	reloaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", reloaded.Version)
	assert.Equal(t, []string{"custom_key"}, reloaded.Extra)
	assert.Equal(t, m.Variables, reloaded.Variables)
}

func TestSkeleton(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "fresh")
	m := Skeleton("fresh")
	require.NoError(t, m.Save(root))
	assert.True(t, Exists(root))

	reloaded, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultUnitVersion, reloaded.Version)
	assert.False(t, reloaded.VersionDefaulted)
	assert.Equal(t, "fresh", reloaded.Prefix)
	assert.Empty(t, reloaded.Extra)
}
