package tui

import (
	"fmt"
	"io"

	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/lifecycle"
	"github.com/Leenie/ansible-universe/internal/lint"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// RuleRow is one line of the rules listing.
type RuleRow struct {
	ID       string `json:"id"`
	Group    string `json:"group"`
	Subject  string `json:"subject"`
	Severity string `json:"severity"`
	Enabled  bool   `json:"enabled"`
	Message  string `json:"message"`
}

// Output renders the results of an invocation.
type Output interface {
	// Run prints the diagnostics and per-target steps of one run.
	Run(res *lifecycle.RunResult)
	// Summary prints the show report.
	Summary(s *lifecycle.Summary)
	// Markdown prints a markdown document, rendered where the format allows.
	Markdown(doc []byte) error
	// Rules lists rule descriptors.
	Rules(rows []RuleRow)
	// Error prints an error and its suggested action.
	Error(err error)
	// Info prints an informational message.
	Info(msg string)
}

// NewOutput returns the Output for format. An empty format selects text.
func NewOutput(w io.Writer, format string) (Output, error) {
	switch format {
	case "", FormatText:
		return NewTTYOutput(w), nil
	case FormatJSON:
		return NewJSONOutput(w), nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", uerrors.ErrInvalidOutputFormat, format, FormatText, FormatJSON)
	}
}

// RuleRows builds listing rows. enabled holds the effective selection.
func RuleRows(rules []lint.Rule, enabled map[string]bool) []RuleRow {
	rows := make([]RuleRow, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, RuleRow{
			ID:       r.ID,
			Group:    r.Group,
			Subject:  r.Kind().String(),
			Severity: string(r.Severity),
			Enabled:  enabled[r.ID],
			Message:  r.Message,
		})
	}
	return rows
}
