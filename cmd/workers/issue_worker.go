package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dlithe/intern-portal/intern-portal-backend/internal/certificate"
	"dlithe/intern-portal/intern-portal-backend/internal/config"
	"dlithe/intern-portal/intern-portal-backend/internal/schema"
	"dlithe/intern-portal/intern-portal-backend/pkg/archive"
)

// IssueWorker periodically renders final certificates for every organization's
// approved records and drops the bundles in the output directory.
type IssueWorker struct {
	service   certificate.Service
	logger    *zap.Logger
	orgs      []string
	outputDir string
}

func NewIssueWorker(service certificate.Service, logger *zap.Logger, orgs []string, outputDir string) *IssueWorker {
	return &IssueWorker{
		service:   service,
		logger:    logger,
		orgs:      orgs,
		outputDir: outputDir,
	}
}

// Sweep runs one approved-batch pass over all organizations. A failure for
// one organization does not stop the others.
func (w *IssueWorker) Sweep(ctx context.Context) {
	for _, org := range w.orgs {
		result, err := w.service.RunApprovedBatch(ctx, org)
		if err != nil {
			w.logger.Error("approved batch failed",
				zap.String("organization", org),
				zap.Error(err))
			continue
		}

		for _, diag := range result.Diagnostics {
			w.logger.Info(diag, zap.String("organization", org))
		}
		for _, rowErr := range result.RowErrors {
			w.logger.Warn("record skipped",
				zap.String("organization", org),
				zap.String("error", rowErr.Error()))
		}
		if len(result.Documents) == 0 {
			continue
		}

		files := make([]archive.File, 0, len(result.Documents))
		for _, doc := range result.Documents {
			files = append(files, archive.File{Name: doc.Filename, Data: doc.Content})
		}
		bundle, err := archive.Bundle(files)
		if err != nil {
			w.logger.Error("bundle failed", zap.String("organization", org), zap.Error(err))
			continue
		}

		path := filepath.Join(w.outputDir, result.BundleName)
		if err := os.WriteFile(path, bundle, 0o644); err != nil {
			w.logger.Error("write bundle failed", zap.String("path", path), zap.Error(err))
			continue
		}

		w.logger.Info("bundle written",
			zap.String("organization", org),
			zap.String("path", path),
			zap.Int("documents", len(result.Documents)),
			zap.Int("row_errors", len(result.RowErrors)))
	}
}

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseDSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("failed to connect to DB", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Worker.OutputDir, 0o755); err != nil {
		logger.Fatal("failed to create output dir", zap.Error(err))
	}

	service := certificate.NewService(
		certificate.NewRepository(db),
		schema.NewMapper(cfg.Aliases()),
		certificate.NewIDGenerator(cfg.DomainShortCodes),
		certificate.NewEngine(certificate.DefaultLayoutOptions()),
		cfg.Organizations,
	)

	orgs := make([]string, 0, len(cfg.Organizations))
	for name := range cfg.Organizations {
		orgs = append(orgs, name)
	}

	worker := NewIssueWorker(service, logger, orgs, cfg.Worker.OutputDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New()
	if _, err := c.AddFunc(cfg.Worker.Schedule, func() { worker.Sweep(ctx) }); err != nil {
		logger.Fatal("invalid worker schedule", zap.Error(err))
	}
	c.Start()
	logger.Info("issue worker started", zap.String("schedule", cfg.Worker.Schedule))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	cancel()
	<-c.Stop().Done()
}
