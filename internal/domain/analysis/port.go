package analysis

import (
	"context"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, tenant string, id AnalysisID) (*Analysis, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Analysis, error)
	Summary(ctx context.Context, tenant string, sinceDays int) (Summary, error)
	UpdateStatus(ctx context.Context, tenant string, id AnalysisID, status Status) error
}

// Summary rekap N hari terakhir
type Summary struct {
	Total      int `json:"total_analyses"`
	Clean      int `json:"likely_clean"`
	Suspicious int `json:"possibly_suspicious"`
	Malicious  int `json:"likely_malicious"`
	Errored    int `json:"errored"`
}

// Sandbox port (interface untuk eksekusi satu tool terisolasi)
type Sandbox interface {
	Execute(ctx context.Context, filePath string, spec tools.ToolSpec) ToolOutcome
}

// Sniffer port (deteksi kind dari konten, bukan label client)
type Sniffer interface {
	Detect(path string) (tools.Kind, error)
}

// ArtifactStore port (penyimpanan report JSON)
type ArtifactStore interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}
