package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bryanwahyu/fileprobe-sec/internal/application"
	appanalysis "github.com/bryanwahyu/fileprobe-sec/internal/application/analysis"
	domain "github.com/bryanwahyu/fileprobe-sec/internal/domain/analysis"
	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
	"github.com/bryanwahyu/fileprobe-sec/internal/infra/intake"
	"github.com/bryanwahyu/fileprobe-sec/internal/middleware"
)

// ==== fakes ====

type fakeRepo struct{}

func (fakeRepo) Save(ctx context.Context, a *domain.Analysis) error { return nil }
func (fakeRepo) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	return &domain.Analysis{ID: id, TenantID: tenant}, nil
}
func (fakeRepo) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	return nil, nil
}
func (fakeRepo) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	return domain.Summary{}, nil
}
func (fakeRepo) UpdateStatus(ctx context.Context, tenant string, id domain.AnalysisID, status domain.Status) error {
	return nil
}

type fakeSandbox struct{}

func (fakeSandbox) Execute(ctx context.Context, filePath string, spec tools.ToolSpec) domain.ToolOutcome {
	return domain.Success(domain.RawResult{Tool: spec.Name, Stdout: "ok"})
}

type fakeSniffer struct{}

func (fakeSniffer) Detect(path string) (tools.Kind, error) { return tools.KindText, nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	reg, err := tools.NewRegistry([]tools.ToolSpec{{
		Name:    "file",
		Kinds:   []tools.Kind{tools.KindText, tools.KindUnknown},
		Argv:    []string{"file", "{file}"},
		Timeout: time.Second,
	}})
	if err != nil {
		t.Fatal(err)
	}
	in, err := intake.New(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	svc := &appanalysis.Service{
		Repo:     fakeRepo{},
		Sandbox:  fakeSandbox{},
		Sniffer:  fakeSniffer{},
		Registry: reg,
		Clock:    application.SystemClock{},
		Workers:  2,
	}
	return NewRouter(svc, nil, in, nil)
}

func multipartUpload(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

// ==== tests ====

func TestAnalyzeRejectsEmptyUpload(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "empty.txt", nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/acme/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty upload answered %d, want 400: %s", rr.Code, rr.Body.String())
	}
}

func TestAnalyzeHappyPath(t *testing.T) {
	router := newTestRouter(t)

	body, contentType := multipartUpload(t, "notes.txt", []byte("plain readable notes\n"))
	req := httptest.NewRequest(http.MethodPost, "/v1/acme/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var res appanalysis.AnalyzeResult
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Report.Overall != domain.OverallAllOK {
		t.Fatalf("overall %s", res.Report.Overall)
	}
	if len(res.Report.Sections) != 1 || res.Report.Sections[0].Tool != "file" {
		t.Fatalf("unexpected sections: %+v", res.Report.Sections)
	}
}

func TestAnalyzeRejectsMissingFileField(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/acme/analyze", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing file answered %d, want 400", rr.Code)
	}
}

func TestTenantGuardRejectsMismatch(t *testing.T) {
	router := newTestRouter(t)

	// API key milik "acme" coba baca data "rival"
	req := httptest.NewRequest(http.MethodGet, "/v1/rival/summary", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.TenantKey, "acme"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("cross-tenant read answered %d, want 403", rr.Code)
	}
}

func TestTenantGuardAllowsMatchAndAnonymous(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/acme/summary", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.TenantKey, "acme"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("matching tenant answered %d", rr.Code)
	}

	// tanpa auth tidak ada tenant di context; guard harus lolos
	req = httptest.NewRequest(http.MethodGet, "/v1/acme/summary", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("anonymous request answered %d", rr.Code)
	}
}
