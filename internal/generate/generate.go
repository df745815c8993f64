// Package generate derives the aggregation file and the description file of a
// unit from its manifest and layout.
//
// Generation is a pure function of its inputs. Only Write touches the disk.
package generate

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Leenie/ansible-universe/internal/constants"
	"github.com/Leenie/ansible-universe/internal/layout"
	"github.com/Leenie/ansible-universe/internal/manifest"
)

//go:embed templates/readme.md.tmpl
var templateFS embed.FS

//nolint:gochecknoglobals // parsed once from the embedded template
var readmeTemplate = template.Must(template.New("readme.md.tmpl").ParseFS(templateFS, "templates/readme.md.tmpl"))

// Artifacts holds the content of the generated files.
type Artifacts struct {
	Aggregation []byte
	Description []byte
}

// Generate renders both artifacts. Identical inputs give byte-identical output.
func Generate(m *manifest.Manifest, l *layout.Layout) (Artifacts, error) {
	agg, err := Aggregation(m, l)
	if err != nil {
		return Artifacts{}, err
	}
	desc, err := Description(m, l)
	if err != nil {
		return Artifacts{}, err
	}
	return Artifacts{Aggregation: agg, Description: desc}, nil
}

type readmeData struct {
	Marker      string
	Name        string
	Description string
	Platforms   []string
	Variables   []readmeVariable
}

type readmeVariable struct {
	Name        string
	Default     string
	Description string
}

// Description renders README.md.
func Description(m *manifest.Manifest, l *layout.Layout) ([]byte, error) {
	data := readmeData{
		Marker:      constants.GeneratedMarker,
		Name:        m.Name,
		Description: strings.TrimSpace(m.Description),
	}
	for _, p := range m.Platforms {
		entry := p.Name
		if len(p.Versions) > 0 {
			entry += " (" + strings.Join(p.Versions, ", ") + ")"
		}
		data.Platforms = append(data.Platforms, entry)
	}
	for _, v := range catalogue(m, l) {
		data.Variables = append(data.Variables, readmeVariable{
			Name:        cell(v.Name),
			Default:     cell(v.Default),
			Description: cell(v.Description),
		})
	}

	var buf bytes.Buffer
	if err := readmeTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// CatalogueEntry is a documented variable: manifest description merged with
// the value from defaults/main.yml.
type CatalogueEntry struct {
	Name        string `json:"name"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description"`
}

// Catalogue lists the manifest variables in declaration order followed by
// variables that only have a default, in defaults file order.
func Catalogue(m *manifest.Manifest, l *layout.Layout) []CatalogueEntry {
	return catalogue(m, l)
}

func catalogue(m *manifest.Manifest, l *layout.Layout) []CatalogueEntry {
	out := make([]CatalogueEntry, 0, len(m.Variables))
	for _, v := range m.Variables {
		def, _ := l.Default(v.Name)
		out = append(out, CatalogueEntry{Name: v.Name, Default: def, Description: v.Description})
	}
	for _, d := range l.Defaults {
		if !m.HasVariable(d.Name) {
			out = append(out, CatalogueEntry{Name: d.Name, Default: d.Value})
		}
	}
	return out
}

// cell makes s safe inside a markdown table cell.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
