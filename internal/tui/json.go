package tui

import (
	"encoding/json"
	"io"

	uerrors "github.com/Leenie/ansible-universe/internal/errors"
	"github.com/Leenie/ansible-universe/internal/lifecycle"
	"github.com/Leenie/ansible-universe/internal/lint"
)

// JSONOutput writes one JSON object per line.
type JSONOutput struct {
	encoder *json.Encoder
}

// NewJSONOutput creates a JSONOutput.
func NewJSONOutput(w io.Writer) *JSONOutput {
	return &JSONOutput{encoder: json.NewEncoder(w)}
}

type jsonRun struct {
	Type         string            `json:"type"`
	RunID        string            `json:"run_id"`
	Target       string            `json:"target"`
	Order        []string          `json:"order"`
	Steps        []lifecycle.Step  `json:"steps"`
	FailedTarget string            `json:"failed_target,omitempty"`
	Error        string            `json:"error,omitempty"`
	Diagnostics  []lint.Diagnostic `json:"diagnostics"`
}

type jsonSummary struct {
	Type string `json:"type"`
	*lifecycle.Summary
}

type jsonDocument struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type jsonRules struct {
	Type  string    `json:"type"`
	Rules []RuleRow `json:"rules"`
}

type jsonMessage struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Run encodes the run result.
func (o *JSONOutput) Run(res *lifecycle.RunResult) {
	out := jsonRun{
		Type:         "run",
		RunID:        res.RunID,
		Target:       res.Target,
		Order:        res.Order,
		Steps:        res.Steps,
		FailedTarget: res.FailedTarget,
		Diagnostics:  res.Diagnostics,
	}
	if out.Diagnostics == nil {
		out.Diagnostics = []lint.Diagnostic{}
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	//nolint:errchkjson // interface method has no error return
	_ = o.encoder.Encode(out)
}

// Summary encodes the show report.
func (o *JSONOutput) Summary(s *lifecycle.Summary) {
	//nolint:errchkjson // interface method has no error return
	_ = o.encoder.Encode(jsonSummary{Type: "summary", Summary: s})
}

// Markdown encodes doc verbatim.
func (o *JSONOutput) Markdown(doc []byte) error {
	return o.encoder.Encode(jsonDocument{Type: "readme", Content: string(doc)})
}

// Rules encodes the rule listing.
func (o *JSONOutput) Rules(rows []RuleRow) {
	if rows == nil {
		rows = []RuleRow{}
	}
	//nolint:errchkjson // interface method has no error return
	_ = o.encoder.Encode(jsonRules{Type: "rules", Rules: rows})
}

// Error encodes err with its suggested action.
func (o *JSONOutput) Error(err error) {
	_, action := uerrors.Actionable(err)
	//nolint:errchkjson // interface method has no error return
	_ = o.encoder.Encode(jsonMessage{Type: "error", Message: err.Error(), Suggestion: action})
}

// Info encodes msg.
func (o *JSONOutput) Info(msg string) {
	//nolint:errchkjson // interface method has no error return
	_ = o.encoder.Encode(jsonMessage{Type: "info", Message: msg})
}
