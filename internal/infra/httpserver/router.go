package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	appai "github.com/bryanwahyu/fileprobe-sec/internal/application/ai"
	appanalysis "github.com/bryanwahyu/fileprobe-sec/internal/application/analysis"
	domai "github.com/bryanwahyu/fileprobe-sec/internal/domain/ai"
	domain "github.com/bryanwahyu/fileprobe-sec/internal/domain/analysis"
	"github.com/bryanwahyu/fileprobe-sec/internal/infra/intake"
	"github.com/bryanwahyu/fileprobe-sec/internal/middleware"
)

type Router struct {
	svc    *appanalysis.Service
	aiSvc  *appai.Service
	intake *intake.Intake
}

func NewRouter(svc *appanalysis.Service, aiSvc *appai.Service, in *intake.Intake, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc, aiSvc: aiSvc, intake: in}
	mux := chi.NewRouter()

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(tenantGuard)
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/analyses/latest", r.wrap(r.handleLatest))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/summary", r.wrap(r.handleSummary))
		rt.Post("/ai/explain", r.wrap(r.handleAIExplain))
	})

	return mux
}

// tenantGuard cocokkan tenant hasil auth dengan segmen path; API key
// satu tenant tidak boleh membaca data tenant lain. Tanpa auth
// (dev mode) context kosong dan guard lolos.
func tenantGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		authed := middleware.GetTenantFromContext(req.Context())
		if authed != "" && authed != chi.URLParam(req, "tenant") {
			http.Error(w, "api key does not match tenant", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, req)
	})
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// statusError error dengan status HTTP eksplisit dari handler
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return e.err.Error() }

func badRequest(err error) error { return &statusError{code: http.StatusBadRequest, err: err} }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var se *statusError
			if errors.As(err, &se) {
				http.Error(w, se.Error(), se.code)
				return
			}
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			var oe *domain.OrchestrationError
			if errors.As(err, &oe) {
				if oe.Retryable {
					w.Header().Set("Retry-After", "10")
					http.Error(w, "analysis capacity exhausted, retry later", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, oe.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/analyze
// multipart/form-data dengan field "file". Sinkron: respons berisi report
// lengkap. Kegagalan tool individual tidak pernah bikin request gagal.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest(err)
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest(fmt.Errorf("no file uploaded"))
	}
	defer file.Close()

	if err := middleware.ValidateFileName(header.Filename); err != nil {
		return badRequest(err)
	}

	path, size, err := r.intake.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, intake.ErrTooLarge) {
			return &statusError{code: http.StatusRequestEntityTooLarge, err: err}
		}
		return err
	}
	// file upload dibuang setelah report jadi; artifact JSON yang disimpan
	defer r.intake.Discard(path)

	// ukuran dihitung dari byte yang benar-benar tertulis, bukan
	// Content-Length yang diklaim client
	if err := middleware.ValidateUploadSize(size, r.intake.MaxBytes()); err != nil {
		return badRequest(err)
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	result, err := r.svc.Analyze(req.Context(), appanalysis.AnalyzeCommand{
		TenantID:     tenant,
		FilePath:     path,
		FileName:     header.Filename,
		DeclaredSize: size,
	})
	if err != nil {
		var oe *domain.OrchestrationError
		if errors.As(err, &oe) && oe.Retryable {
			middleware.IncrementAnalysesRejected()
		} else {
			middleware.IncrementAnalysesFailed()
		}
		return err
	}

	logrus.WithFields(logrus.Fields{
		"tenant":  tenant,
		"id":      result.Analysis.ID,
		"kind":    result.Analysis.Kind,
		"overall": result.Analysis.Overall,
		"verdict": result.Analysis.Verdict,
	}).Info("analysis finished")

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}

// GET /v1/{tenant}/analyses/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.svc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return badRequest(err)
	}

	a, err := r.svc.Get(req.Context(), tenant, domain.AnalysisID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(a)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))
	days = middleware.ValidateDays(days)

	summary, err := r.svc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// POST /v1/{tenant}/ai/explain
// Body: {"analysis_id": "<id>"}
// Jelaskan report artifact yang sudah tersimpan lewat AI.
func (r *Router) handleAIExplain(w http.ResponseWriter, req *http.Request) error {
	if r.aiSvc == nil {
		return &statusError{code: http.StatusNotImplemented, err: fmt.Errorf("ai explain not configured")}
	}
	tenant := chi.URLParam(req, "tenant")
	var body struct {
		AnalysisID string `json:"analysis_id"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest(err)
	}
	if body.AnalysisID == "" {
		return badRequest(fmt.Errorf("analysis_id is required"))
	}

	a, err := r.svc.Get(req.Context(), tenant, domain.AnalysisID(body.AnalysisID))
	if err != nil {
		return err
	}
	if a == nil || a.ArtifactURL == "" {
		return badRequest(fmt.Errorf("artifact_url not found for analysis_id: %s", body.AnalysisID))
	}

	explanation, err := r.aiSvc.Explain(req.Context(), a.ArtifactURL)
	if err != nil {
		return err
	}

	// model diset JSON mode, tapi jangan percaya begitu saja
	var payload any = explanation
	if json.Valid([]byte(explanation)) {
		payload = json.RawMessage(explanation)
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{
		"analysis_id": body.AnalysisID,
		"explanation": payload,
	})
}
