package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Leenie/ansible-universe/internal/constants"
	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/lifecycle"
)

// TTYOutput writes styled, human-oriented text.
type TTYOutput struct {
	w      io.Writer
	styles *Styles
	title  cases.Caser
	width  int
}

// NewTTYOutput creates a TTYOutput. It honors NO_COLOR.
func NewTTYOutput(w io.Writer) *TTYOutput {
	CheckNoColor()
	return &TTYOutput{
		w:      w,
		styles: NewStyles(),
		title:  cases.Title(language.English),
		width:  markdownWidth,
	}
}

// Run prints diagnostics first, then one line per step. Steps reused from an
// earlier run in the same invocation are omitted.
func (o *TTYOutput) Run(res *lifecycle.RunResult) {
	for _, d := range res.Diagnostics {
		_, _ = fmt.Fprintln(o.w, o.styles.severity(d.Severity).Render(d.String()))
	}
	for _, step := range res.Steps {
		if step.Reused {
			continue
		}
		o.step(step)
	}
}

func (o *TTYOutput) step(step lifecycle.Step) {
	var detail string
	switch step.Status {
	case constants.TargetStatusNotRun:
		detail = "not run"
	case constants.TargetStatusUpToDate:
		detail = "up to date"
		if step.Detail != "" {
			detail += " (" + step.Detail + ")"
		}
	default:
		detail = step.Detail
	}

	line := StatusIcon(step.Status) + " " + o.styles.Target.Render(o.title.String(step.Target))
	if detail != "" {
		line += "  " + detail
	}
	if step.Duration > 0 && step.Status != constants.TargetStatusNotRun {
		line += o.styles.Dim.Render(" " + step.Duration.Round(time.Millisecond).String())
	}
	_, _ = fmt.Fprintln(o.w, o.styles.status(step.Status).Render(line))
}

// Summary prints the manifest summary and the variables table.
func (o *TTYOutput) Summary(s *lifecycle.Summary) {
	m := s.Manifest
	field := func(label, value string) {
		if value == "" {
			value = o.styles.Dim.Render("(none)")
		}
		_, _ = fmt.Fprintf(o.w, "%s %s\n", o.styles.Header.Render(padRight(label+":", 13)), value)
	}

	field("Name", m.Name)
	field("Version", m.Version)
	field("Author", m.Author())
	field("License", m.License)
	field("Description", m.Description)
	field("Platforms", strings.Join(m.PlatformNames(), ", "))
	field("Task files", strings.Join(s.TaskFiles, ", "))
	field("Archive", s.ArchivePath)

	if len(s.Variables) == 0 {
		return
	}
	_, _ = fmt.Fprintln(o.w)
	rows := make([][]string, 0, len(s.Variables))
	for _, v := range s.Variables {
		rows = append(rows, []string{v.Name, v.Default, v.Description})
	}
	o.table([]string{"VARIABLE", "DEFAULT", "DESCRIPTION"}, rows)
}

// Markdown renders doc with glamour, falling back to the raw text.
func (o *TTYOutput) Markdown(doc []byte) error {
	out, err := renderMarkdown(doc, o.width)
	if err != nil {
		_, werr := o.w.Write(doc)
		return werr
	}
	_, err = io.WriteString(o.w, out)
	return err
}

// Rules prints the rule table.
func (o *TTYOutput) Rules(rows []RuleRow) {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		state := "off"
		if r.Enabled {
			state = "on"
		}
		cells = append(cells, []string{r.ID, r.Group, r.Subject, r.Severity, state, r.Message})
	}
	o.table([]string{"ID", "GROUP", "SUBJECT", "SEVERITY", "ENABLED", "MESSAGE"}, cells)
}

// Error prints the error with its suggested action.
func (o *TTYOutput) Error(err error) {
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+err.Error()))
	if _, action := uerrors.Actionable(err); action != "" {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  ▸ Try: "+action))
	}
}

// Info prints msg.
func (o *TTYOutput) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}
