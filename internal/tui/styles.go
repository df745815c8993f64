// Package tui renders run results for a terminal or as JSON.
//
// Colors use AdaptiveColor for light and dark terminals. Call CheckNoColor
// before rendering to honor NO_COLOR and TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/Leenie/ansible-universe/internal/constants"
	"github.com/Leenie/ansible-universe/internal/lint"
)

//nolint:gochecknoglobals // styling palette
var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// Styles holds the styles used by TTYOutput.
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
	Header  lipgloss.Style
	Target  lipgloss.Style
}

// NewStyles creates the default styles.
func NewStyles() *Styles {
	return &Styles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Target: lipgloss.NewStyle().Bold(true),
	}
}

// StatusIcon returns the icon shown for a target status.
func StatusIcon(s constants.TargetStatus) string {
	switch s {
	case constants.TargetStatusSucceeded:
		return "✓"
	case constants.TargetStatusUpToDate:
		return "•"
	case constants.TargetStatusFailed:
		return "✗"
	default:
		return "-"
	}
}

func (s *Styles) status(st constants.TargetStatus) lipgloss.Style {
	switch st {
	case constants.TargetStatusSucceeded:
		return s.Success
	case constants.TargetStatusFailed:
		return s.Error
	default:
		return s.Dim
	}
}

func (s *Styles) severity(sev lint.Severity) lipgloss.Style {
	if sev == lint.SeverityError {
		return s.Error
	}
	return s.Warning
}

// CheckNoColor drops to plain ASCII output when colors are unwanted.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false when NO_COLOR is present (any value) or TERM=dumb.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
