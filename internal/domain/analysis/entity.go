package analysis

import (
	"time"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

// ID tipe untuk Analysis
type AnalysisID string

// Status enum untuk lifecycle satu analysis
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Verdict hasil suspicion scoring
type Verdict string

const (
	VerdictClean      Verdict = "likely-clean"
	VerdictSuspicious Verdict = "possibly-suspicious"
	VerdictMalicious  Verdict = "likely-malicious"
)

// ToolCounts rekap status per-tool dalam satu report
type ToolCounts struct {
	OK       int `json:"ok"`
	Failed   int `json:"failed"`
	TimedOut int `json:"timedout"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// Aggregate Root: Analysis — satu run analisis untuk satu file upload
type Analysis struct {
	ID          AnalysisID `json:"id"`
	TenantID    string     `json:"tenant_id"`
	TriggeredAt time.Time  `json:"triggered_at"`
	FileName    string     `json:"file_name"`
	FileSize    int64      `json:"file_size"`
	Kind        tools.Kind `json:"kind"`
	Status      Status     `json:"status"`
	Overall     Overall    `json:"overall"`
	Score       int        `json:"score"`
	Verdict     Verdict    `json:"verdict"`
	Reasons     []string   `json:"reasons,omitempty"`
	Counts      ToolCounts `json:"counts"`
	ArtifactURL string     `json:"artifact_url,omitempty"`
	DurationMS  int64      `json:"duration_ms"`
}
