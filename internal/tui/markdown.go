package tui

import (
	"github.com/charmbracelet/glamour"
)

const markdownWidth = 80

// renderMarkdown renders doc for a terminal. Without color support the
// plain "notty" style is used so output stays free of escape codes.
func renderMarkdown(doc []byte, width int) (string, error) {
	style := glamour.WithAutoStyle()
	if !HasColorSupport() {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(string(doc))
}
