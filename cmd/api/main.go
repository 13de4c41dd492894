package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/fileprobe-sec/internal/application"
	appai "github.com/bryanwahyu/fileprobe-sec/internal/application/ai"
	appanalysis "github.com/bryanwahyu/fileprobe-sec/internal/application/analysis"
	"github.com/bryanwahyu/fileprobe-sec/internal/config"
	domain "github.com/bryanwahyu/fileprobe-sec/internal/domain/analysis"
	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
	aiclient "github.com/bryanwahyu/fileprobe-sec/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/fileprobe-sec/internal/infra/db/mysql"
	postgresp "github.com/bryanwahyu/fileprobe-sec/internal/infra/db/postgres"
	"github.com/bryanwahyu/fileprobe-sec/internal/infra/executor/sandbox"
	"github.com/bryanwahyu/fileprobe-sec/internal/infra/httpserver"
	"github.com/bryanwahyu/fileprobe-sec/internal/infra/intake"
	"github.com/bryanwahyu/fileprobe-sec/internal/infra/sniff"
	minioStore "github.com/bryanwahyu/fileprobe-sec/internal/infra/storage"
	"github.com/bryanwahyu/fileprobe-sec/internal/logging"
	"github.com/bryanwahyu/fileprobe-sec/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		logrus.Fatalf("config load error: %v", err)
	}

	logging.Init(cfg.Logging.Level, cfg.Logging.Format)

	// registry dibangun sekali; ConfigError di sini fatal, bukan di request
	registry, err := tools.NewRegistry(cfg.ToolSpecs())
	if err != nil {
		logrus.Fatalf("tool registry error: %v", err)
	}

	ctx := context.Background()

	// connect database (mysql default, postgres optional)
	var (
		db   *sql.DB
		repo domain.Repository
	)
	switch cfg.Database.Driver {
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logrus.Fatalf("postgres connect error: %v", err)
		}
		repo = postgresp.NewAnalysisRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logrus.Fatalf("mysql connect error: %v", err)
		}
		repo = mysqlp.NewAnalysisRepository(db)
	}
	defer db.Close()

	// init minio
	store, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		logrus.Fatalf("minio init error: %v", err)
	}

	// init intake + sandbox
	in, err := intake.New(cfg.Scratch.Root, cfg.Scratch.MaxUploadBytes)
	if err != nil {
		logrus.Fatalf("scratch root error: %v", err)
	}
	box := sandbox.New(in.Root())

	// init service
	svc := &appanalysis.Service{
		Repo:          repo,
		Sandbox:       box,
		Sniffer:       sniff.NewDetector(),
		Artifacts:     store,
		Registry:      registry,
		Clock:         application.SystemClock{},
		Workers:       cfg.Analysis.Workers,
		MaxConcurrent: cfg.Analysis.MaxConcurrent,
	}

	// optional AI explain
	var aiSvc *appai.Service
	if cfg.AI.APIKey != "" {
		aiSvc = appai.NewService(aiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model))
	}

	// init router + middleware chain
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))

	checkers := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
		"scratch":  &middleware.ScratchHealthChecker{Root: in.Root()},
	}
	mux.Mount("/", httpserver.NewRouter(svc, aiSvc, in, checkers))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logrus.Infof("server listening on %s (%d tools registered)", addr, registry.Len())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logrus.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logrus.Warnf("shutdown error: %v", err)
	}
}
