package analysis

import "time"

// OutcomeStatus klasifikasi hasil satu invokasi tool
type OutcomeStatus string

const (
	OutcomeOK       OutcomeStatus = "ok"
	OutcomeFailed   OutcomeStatus = "failed"
	OutcomeTimedOut OutcomeStatus = "timedout"
	OutcomeSkipped  OutcomeStatus = "skipped"
)

// RawResult capture mentah satu invokasi. Dibuat sandbox, tidak pernah
// dimutasi setelah diserahkan ke aggregator.
type RawResult struct {
	Tool      string        `json:"tool"`
	ExitCode  int           `json:"exit_code"`
	Stdout    string        `json:"stdout"`
	Stderr    string        `json:"stderr"`
	Elapsed   time.Duration `json:"elapsed"`
	Truncated bool          `json:"truncated"`
}

// ToolOutcome tagged variant per (file, tool) pair.
// Tepat satu outcome per dispatch; Raw hanya terisi untuk OK/Failed.
type ToolOutcome struct {
	Tool   string        `json:"tool"`
	Status OutcomeStatus `json:"status"`
	Raw    *RawResult    `json:"raw,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

// Success outcome sukses dengan hasil mentah
func Success(raw RawResult) ToolOutcome {
	return ToolOutcome{Tool: raw.Tool, Status: OutcomeOK, Raw: &raw}
}

// Failed outcome gagal; raw boleh nil kalau proses tidak sempat jalan
func Failed(tool, reason string, raw *RawResult) ToolOutcome {
	return ToolOutcome{Tool: tool, Status: OutcomeFailed, Raw: raw, Reason: reason}
}

// TimedOut outcome kena wall-clock limit
func TimedOut(tool string, raw *RawResult) ToolOutcome {
	return ToolOutcome{Tool: tool, Status: OutcomeTimedOut, Raw: raw, Reason: "timeout"}
}

// Skipped outcome dilewati (mis. binary tidak terpasang)
func Skipped(tool, reason string) ToolOutcome {
	return ToolOutcome{Tool: tool, Status: OutcomeSkipped, Reason: reason}
}
