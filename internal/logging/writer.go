package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// FilteringWriter redacts sensitive content before passing bytes on.
// zerolog writes one event per call, so patterns never straddle writes.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports len(p) on success even when the
// filtered output is shorter.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(fw.w, FilterSensitiveValue(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SensitiveDataHook marks events whose message carries sensitive data.
// zerolog does not let a hook rewrite the message, so console output relies
// on call sites using SafeValue; the file log is covered by FilteringWriter.
type SensitiveDataHook struct{}

// NewSensitiveDataHook creates a SensitiveDataHook.
func NewSensitiveDataHook() *SensitiveDataHook {
	return &SensitiveDataHook{}
}

// Run implements zerolog.Hook.
func (h *SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}
