package mysql

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

// Save insert/update Analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO file_analyses
(id, tenant_id, triggered_at, file_name, file_size, kind, status, overall,
 score, verdict, reasons,
 tools_ok, tools_failed, tools_timedout, tools_skipped, tools_total,
 artifact_url, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status), overall=VALUES(overall),
 score=VALUES(score), verdict=VALUES(verdict), reasons=VALUES(reasons),
 tools_ok=VALUES(tools_ok), tools_failed=VALUES(tools_failed),
 tools_timedout=VALUES(tools_timedout), tools_skipped=VALUES(tools_skipped),
 tools_total=VALUES(tools_total),
 artifact_url=VALUES(artifact_url), duration_ms=VALUES(duration_ms);
`
	tenant := stringOrDash(a.TenantID)
	triggered := a.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, tenant, triggered, a.FileName, a.FileSize, a.Kind, a.Status, a.Overall,
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
WHERE tenant_id=? AND id=? LIMIT 1;
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
WHERE tenant_id=? ORDER BY triggered_at DESC LIMIT ?;
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
  COALESCE(SUM(verdict='likely-clean'),0),
  COALESCE(SUM(verdict='possibly-suspicious'),0),
  COALESCE(SUM(verdict='likely-malicious'),0),
  COALESCE(SUM(status='error'),0)
FROM file_analyses
WHERE tenant_id=? AND triggered_at >= DATE_SUB(NOW(), INTERVAL ? DAY);
`
	var s domain.Summary
	err := r.db.QueryRowContext(ctx, q, tenant, sinceDays).
		Scan(&s.Total, &s.Clean, &s.Suspicious, &s.Malicious, &s.Errored)
	return s, err
}

// UpdateStatus set status satu analysis
func (r *AnalysisRepository) UpdateStatus(ctx context.Context, tenant string, id domain.AnalysisID, status domain.Status) error {
	const q = `UPDATE file_analyses SET status=? WHERE tenant_id=? AND id=?;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// rowScanner dipakai bersama QueryRow dan Rows
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
