package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/fileprobe-sec/internal/application"
	domain "github.com/bryanwahyu/fileprobe-sec/internal/domain/analysis"
	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

// Service implements use-cases untuk Analysis.
// Thread-safe; satu instance dipakai semua request.
type Service struct {
	Repo      domain.Repository
	Sandbox   domain.Sandbox
	Sniffer   domain.Sniffer
	Artifacts domain.ArtifactStore
	Registry  *tools.Registry
	Clock     application.Clock

	// Workers ukuran pool per analisis; satu-satunya knob konkurensi
	// yang membatasi fan-out tool dari satu upload.
	Workers int

	// admission membatasi jumlah analisis yang jalan bersamaan.
	admission chan struct{}
	admitOnce sync.Once
	MaxConcurrent int
}

// Command untuk trigger analisis satu file upload
type AnalyzeCommand struct {
	TenantID     string
	FilePath     string
	FileName     string
	DeclaredSize int64
}

type AnalyzeResult struct {
	Analysis *domain.Analysis `json:"analysis"`
	Report   domain.Report    `json:"report"`
}

func (s *Service) initAdmission() {
	s.admitOnce.Do(func() {
		n := s.MaxConcurrent
		if n <= 0 {
			n = 4
		}
		s.admission = make(chan struct{}, n)
	})
}

// Analyze sniff kind → dispatch battery tool via pool → merge → score →
// simpan row + artifact. Kegagalan satu tool tidak pernah menggagalkan
// batch; hanya error infrastruktur yang sampai ke caller.
func (s *Service) Analyze(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	s.initAdmission()
	select {
	case s.admission <- struct{}{}:
		defer func() { <-s.admission }()
	default:
		return AnalyzeResult{}, &domain.OrchestrationError{
			Op: "admit", Err: domain.ErrBusy, Retryable: true,
		}
	}

	now := s.Clock.Now()

	kind, err := s.Sniffer.Detect(cmd.FilePath)
	if err != nil {
		return AnalyzeResult{}, &domain.OrchestrationError{
			Op:  "sniff",
			Err: fmt.Errorf("%w: %v", domain.ErrUnreadableInput, err),
		}
	}

	id := domain.AnalysisID(fmt.Sprintf("%s-%s", uuid.New().String(), kind))

	initial := &domain.Analysis{
		ID:          id,
		TenantID:    cmd.TenantID,
		TriggeredAt: now,
		FileName:    cmd.FileName,
		FileSize:    cmd.DeclaredSize,
		Kind:        kind,
		Status:      domain.StatusRunning,
	}
	if err := s.Repo.Save(ctx, initial); err != nil {
		return AnalyzeResult{}, err
	}

	specs := s.Registry.Applicable(kind)
	outcomes := s.dispatch(ctx, cmd.FilePath, specs)

	if ctx.Err() != nil {
		// client hilang di tengah dispatch; jangan tinggalkan row running
		if uerr := s.Repo.UpdateStatus(context.Background(), cmd.TenantID, id, domain.StatusError); uerr != nil {
			logrus.WithField("analysis", id).Warnf("status update failed: %v", uerr)
		}
		return AnalyzeResult{}, &domain.OrchestrationError{Op: "dispatch", Err: ctx.Err()}
	}

	report := domain.Merge(cmd.FileName, kind, s.Registry.Names(kind), outcomes)
	score, verdict, reasons := domain.Score(report, cmd.FileName)

	artifactURL, err := s.storeReport(ctx, cmd.TenantID, id, report)
	if err != nil {
		// report sudah lengkap; artifact yang gagal diunggah tidak
		// membatalkan hasil analisis
		logrus.WithField("analysis", id).Warnf("artifact upload failed: %v", err)
	}

	final := &domain.Analysis{
		ID:          id,
		TenantID:    cmd.TenantID,
		TriggeredAt: now,
		FileName:    cmd.FileName,
		FileSize:    cmd.DeclaredSize,
		Kind:        kind,
		Status:      domain.StatusDone,
		Overall:     report.Overall,
		Score:       score,
		Verdict:     verdict,
		Reasons:     reasons,
		Counts:      report.CountTools(),
		ArtifactURL: artifactURL,
		DurationMS:  s.Clock.Now().Sub(now).Milliseconds(),
	}
	if err := s.Repo.Save(ctx, final); err != nil {
		return AnalyzeResult{}, err
	}

	return AnalyzeResult{Analysis: final, Report: report}, nil
}

// dispatch jalankan semua spec lewat worker pool fixed-size.
// Selesai hanya setelah setiap spec punya tepat satu outcome.
func (s *Service) dispatch(ctx context.Context, filePath string, specs []tools.ToolSpec) []domain.ToolOutcome {
	if len(specs) == 0 {
		return nil
	}

	workers := s.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(specs) {
		workers = len(specs)
	}

	jobs := make(chan tools.ToolSpec)
	results := make(chan domain.ToolOutcome, len(specs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for spec := range jobs {
				results <- s.runOne(ctx, filePath, spec)
			}
		}()
	}

	for _, spec := range specs {
		jobs <- spec
	}
	close(jobs)
	wg.Wait()
	close(results)

	outcomes := make([]domain.ToolOutcome, 0, len(specs))
	for o := range results {
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// runOne satu invokasi sandbox dengan recovery. Worker yang panic
// diretry sekali; panic kedua dicatat sebagai Failed, bukan hilang.
func (s *Service) runOne(ctx context.Context, filePath string, spec tools.ToolSpec) domain.ToolOutcome {
	attempt := func() (out domain.ToolOutcome, panicked bool) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("tool", spec.Name).Errorf("sandbox panic: %v", r)
				panicked = true
			}
		}()
		return s.Sandbox.Execute(ctx, filePath, spec), false
	}

	out, panicked := attempt()
	if !panicked {
		return out
	}
	out, panicked = attempt()
	if !panicked {
		return out
	}
	return domain.Failed(spec.Name, "analyzer crashed twice", nil)
}

// storeReport tulis report JSON ke file lokal lalu upload sebagai artifact
func (s *Service) storeReport(ctx context.Context, tenant string, id domain.AnalysisID, report domain.Report) (string, error) {
	if s.Artifacts == nil {
		return "", nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	local := filepath.Join(os.TempDir(), fmt.Sprintf("%s_analysis.json", id))
	if err := os.WriteFile(local, data, 0o600); err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s/%s.json", tenant, report.Kind, id)
	url, err := s.Artifacts.UploadAndCleanup(ctx, local, key)
	if err != nil {
		os.Remove(local)
		return "", err
	}
	return url, nil
}

// Latest ambil N analisis terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Get ambil 1 analisis by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Summary rekap hasil N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	return s.Repo.Summary(ctx, tenant, sinceDays)
}
