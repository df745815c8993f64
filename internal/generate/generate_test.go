package generate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Leenie/ansible-universe/internal/constants"
	"github.com/Leenie/ansible-universe/internal/layout"
	"github.com/Leenie/ansible-universe/internal/manifest"
)

func parseManifest(t *testing.T, src string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Parse([]byte(src), "webserver")
	require.NoError(t, err)
	return m
}

func decodeTasks(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

func TestAggregation_IncludeWhen(t *testing.T) {
	t.Parallel()

	m := parseManifest(t, "include_when:\n  a.yml: cond_a\n")
	l := &layout.Layout{TaskFiles: []string{"a.yml", "b.yml"}}

	data, err := Aggregation(m, l)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# "+constants.GeneratedMarker+"\n"))

	tasks := decodeTasks(t, data)
	assert.Equal(t, []map[string]any{
		{IncludeKeyword: "a.yml", "when": "cond_a"},
		{IncludeKeyword: "b.yml"},
	}, tasks)
}

func TestAggregation_PlatformGuard(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		manifest string
		wantMsg  string
		wantWhen string
	}{
		{
			name:     "with author",
			manifest: "galaxy_info:\n  author: jane\n  platforms:\n    - name: Debian\n    - name: Ubuntu\n",
			wantMsg:  "unsupported platform -- please contact jane for support",
			wantWhen: "ansible_distribution not in ['Debian', 'Ubuntu']",
		},
		{
			name:     "without author",
			manifest: "galaxy_info:\n  platforms:\n    - name: EL\n",
			wantMsg:  "unsupported platform -- please contact the role maintainer for support",
			wantWhen: "ansible_distribution not in ['EL']",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			data, err := Aggregation(parseManifest(t, tc.manifest), &layout.Layout{TaskFiles: []string{"x.yml"}})
			require.NoError(t, err)

			tasks := decodeTasks(t, data)
			require.Len(t, tasks, 2)
			guard := tasks[0]
			assert.Equal(t, "assert the target platform is supported", guard["name"])
			assert.Equal(t, map[string]any{"msg": tc.wantMsg}, guard["fail"])
			assert.Equal(t, tc.wantWhen, guard["when"])
			assert.Equal(t, "x.yml", tasks[1][IncludeKeyword])
		})
	}
}

func TestAggregation_Empty(t *testing.T) {
	t.Parallel()

	data, err := Aggregation(parseManifest(t, ""), &layout.Layout{})
	require.NoError(t, err)
	assert.Empty(t, decodeTasks(t, data))
}

const readmeManifest = `
galaxy_info:
  description: Serves | sites
  platforms:
    - name: Debian
      versions: ["9"]
variables:
  web_port: listening port
  web_root:
`

func TestDescription(t *testing.T) {
	t.Parallel()

	m := parseManifest(t, readmeManifest)
	l := &layout.Layout{Defaults: []layout.Default{
		{Name: "web_root", Value: "/var/www"},
		{Name: "web_extra", Value: "[a, b]"},
	}}

	data, err := Description(m, l)
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "<!-- "+constants.GeneratedMarker+" -->\n"))
	assert.Contains(t, out, "# webserver\n")
	assert.Contains(t, out, "Serves | sites\n")
	assert.Contains(t, out, "  * Debian (9)\n")
	assert.Contains(t, out, "| Name | Default | Description |\n")

	port := strings.Index(out, "| web_port |  | listening port |")
	root := strings.Index(out, "| web_root | /var/www |  |")
	extra := strings.Index(out, "| web_extra | [a, b] |  |")
	require.NotEqual(t, -1, port)
	require.NotEqual(t, -1, root, "undocumented variables are still listed")
	require.NotEqual(t, -1, extra)
	assert.Less(t, port, root, "manifest order is preserved")
	assert.Less(t, root, extra)
}

func TestDescription_Placeholders(t *testing.T) {
	t.Parallel()

	data, err := Description(parseManifest(t, ""), &layout.Layout{})
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "No description (yet.)")
	assert.Contains(t, out, "No supported platform specified (yet.)")
	assert.Contains(t, out, "No variable declared (yet.)")
}

func TestCell(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `a \| b c`, cell("a | b\n c"))
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	m := parseManifest(t, readmeManifest+"include_when:\n  b.yml: x\n")
	l := &layout.Layout{TaskFiles: []string{"a.yml", "b.yml", "c.yml"}}

	first, err := Generate(m, l)
	require.NoError(t, err)
	for range 5 {
		again, err := Generate(m, l)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestWrite_Idempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := Artifacts{Aggregation: []byte("agg\n"), Description: []byte("desc\n")}

	res, err := Write(root, a, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{constants.AggregationPath, constants.DescriptionPath}, res.Written)
	assert.True(t, res.Changed())

	res, err = Write(root, a, nil)
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Equal(t, []string{constants.AggregationPath, constants.DescriptionPath}, res.UpToDate)

	got, err := os.ReadFile(filepath.Join(root, constants.DescriptionPath))
	require.NoError(t, err)
	assert.Equal(t, "desc\n", string(got))
}

func TestWrite_Excluded(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hand written"), 0o600))

	res, err := Write(root, Artifacts{Aggregation: []byte("a"), Description: []byte("b")}, layout.Excludes{"README.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md"}, res.Excluded)

	got, err := os.ReadFile(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "hand written", string(got))
}

func TestClean(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := Write(root, Artifacts{Aggregation: []byte("a"), Description: []byte("b")}, nil)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(root, constants.DistDir), 0o750))

	removed, err := Clean(root, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{constants.AggregationPath, constants.DescriptionPath}, removed)
	assert.DirExists(t, filepath.Join(root, constants.DistDir))

	removed, err = Clean(root, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{constants.DistDir}, removed)
	assert.NoDirExists(t, filepath.Join(root, constants.DistDir))
}
