package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/fileprobe-sec/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save upsert Analysis record (Postgres ON CONFLICT)
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO file_analyses
(id, tenant_id, triggered_at, file_name, file_size, kind, status, overall,
 score, verdict, reasons,
 tools_ok, tools_failed, tools_timedout, tools_skipped, tools_total,
 artifact_url, duration_ms)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (id) DO UPDATE SET
 status=EXCLUDED.status, overall=EXCLUDED.overall,
 score=EXCLUDED.score, verdict=EXCLUDED.verdict, reasons=EXCLUDED.reasons,
 tools_ok=EXCLUDED.tools_ok, tools_failed=EXCLUDED.tools_failed,
 tools_timedout=EXCLUDED.tools_timedout, tools_skipped=EXCLUDED.tools_skipped,
 tools_total=EXCLUDED.tools_total,
 artifact_url=EXCLUDED.artifact_url, duration_ms=EXCLUDED.duration_ms;
`
	triggered := a.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.TenantID, triggered, a.FileName, a.FileSize, a.Kind, a.Status, a.Overall,
		a.Score, a.Verdict, strings.Join(a.Reasons, "\n"),
		a.Counts.OK, a.Counts.Failed, a.Counts.TimedOut, a.Counts.Skipped, a.Counts.Total,
		a.ArtifactURL, a.DurationMS,
	)
	return err
}

// Get by ID + Tenant
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	const q = `
SELECT id, tenant_id, triggered_at, file_name, file_size, kind, status, overall,
       score, verdict, reasons,
       tools_ok, tools_failed, tools_timedout, tools_skipped, tools_total,
       artifact_url, duration_ms
FROM file_analyses
WHERE tenant_id=$1 AND id=$2 LIMIT 1;
`
	return scanRow(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest analyses per tenant
func (r *AnalysisRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, triggered_at, file_name, file_size, kind, status, overall,
       score, verdict, reasons,
       tools_ok, tools_failed, tools_timedout, tools_skipped, tools_total,
       artifact_url, duration_ms
FROM file_analyses
WHERE tenant_id=$1 ORDER BY triggered_at DESC LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Summary rekap verdict N hari terakhir
func (r *AnalysisRepository) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	const q = `
SELECT
  COUNT(*),
  COUNT(*) FILTER (WHERE verdict='likely-clean'),
  COUNT(*) FILTER (WHERE verdict='possibly-suspicious'),
  COUNT(*) FILTER (WHERE verdict='likely-malicious'),
  COUNT(*) FILTER (WHERE status='error')
FROM file_analyses
WHERE tenant_id=$1 AND triggered_at >= NOW() - ($2 || ' days')::interval;
`
	var s domain.Summary
	err := r.db.QueryRowContext(ctx, q, tenant, sinceDays).
		Scan(&s.Total, &s.Clean, &s.Suspicious, &s.Malicious, &s.Errored)
	return s, err
}

// UpdateStatus set status satu analysis
func (r *AnalysisRepository) UpdateStatus(ctx context.Context, tenant string, id domain.AnalysisID, status domain.Status) error {
	const q = `UPDATE file_analyses SET status=$1 WHERE tenant_id=$2 AND id=$3;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*domain.Analysis, error) {
	var a domain.Analysis
	var reasons string
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.TriggeredAt, &a.FileName, &a.FileSize, &a.Kind, &a.Status, &a.Overall,
		&a.Score, &a.Verdict, &reasons,
		&a.Counts.OK, &a.Counts.Failed, &a.Counts.TimedOut, &a.Counts.Skipped, &a.Counts.Total,
		&a.ArtifactURL, &a.DurationMS,
	); err != nil {
		return nil, err
	}
	if reasons != "" {
		a.Reasons = strings.Split(reasons, "\n")
	}
	return &a, nil
}
