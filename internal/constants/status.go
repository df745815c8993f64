package constants

// TargetStatus is the outcome of a single lifecycle target within a run.
type TargetStatus string

// Target status values.
const (
	// TargetStatusSucceeded means the target's action ran and succeeded.
	TargetStatusSucceeded TargetStatus = "succeeded"

	// TargetStatusUpToDate means the action found its outputs already current and wrote nothing.
	TargetStatusUpToDate TargetStatus = "up_to_date"

	// TargetStatusFailed means the action returned an error. Later targets are not run.
	TargetStatusFailed TargetStatus = "failed"

	// TargetStatusNotRun means the target was in the closure but a prior target failed.
	TargetStatusNotRun TargetStatus = "not_run"
)

// String returns the string representation of the status.
func (s TargetStatus) String() string {
	return string(s)
}

// IsTerminalSuccess reports whether later targets may depend on this outcome.
func (s TargetStatus) IsTerminalSuccess() bool {
	return s == TargetStatusSucceeded || s == TargetStatusUpToDate
}
