package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"ResolutionScanner/internal/config"
	"ResolutionScanner/internal/infrastructure/archive"
	"ResolutionScanner/internal/infrastructure/fetcher"
	"ResolutionScanner/internal/infrastructure/parser"
	"ResolutionScanner/internal/infrastructure/pdftext"
	"ResolutionScanner/internal/infrastructure/scheduler"
	"ResolutionScanner/internal/infrastructure/storage"
	"ResolutionScanner/internal/logging"
	"ResolutionScanner/internal/ports"
	"ResolutionScanner/internal/resolution"
	"ResolutionScanner/internal/scanner"
	"ResolutionScanner/internal/usecase"
	"ResolutionScanner/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	db        *sqlx.DB
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	logger    *slog.Logger
}

// New opens the case store and builds the pipeline from configuration.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := storage.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	client := fetcher.NewHTTPClient(cfg.Fetcher)

	registry := scanner.NewRegistry()
	for _, h := range parser.DefaultHeuristics(cfg.Listing) {
		registry.Register(h)
	}
	listing := parser.NewListingScanner(client, cfg.Fetcher, baseLogger.With("component", "listing"))
	source := parser.NewStrategySource(registry, cfg.Listing, listing, baseLogger.With("component", "source"))

	var sink ports.ArchiveSink
	if cfg.Archive.Enabled {
		fs := archive.NewFilesystem(cfg.Archive.Dir)
		if err := fs.Init(); err != nil {
			_ = db.Close()
			return nil, err
		}
		sink = fs
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Fetcher:    fetcher.New(client, cfg.Fetcher, baseLogger.With("component", "fetcher")),
		Extractor:  pdftext.New(),
		Analyzer:   resolution.Analyzer{Classifier: resolution.Classifier{SplitExpressWithdrawal: cfg.Classifier.SplitExpressWithdrawal}},
		Repository: storage.NewCaseRepository(db),
		Archive:    sink,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	application := &Application{cfg: cfg, db: db, pipeline: pipeline, logger: baseLogger}
	if cfg.Scheduler.Enabled {
		driver := scheduler.NewCronScheduler(
			cfg.Scheduler.CronExpression,
			cfg.Scheduler.Location(),
			logger.New(baseLogger, "cron"),
		)
		application.scheduler = usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))
	}
	return application, nil
}

// Pipeline exposes the ingestion use case to callers such as an upload handler.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Run performs a single batch, or with scheduling enabled keeps running
// batches on the cron expression until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if a.scheduler == nil {
		summary, err := a.pipeline.Run(ctx)
		if err != nil {
			return fmt.Errorf("run batch: %w", err)
		}
		a.logger.Info("batch summary", "total", summary.Total, "processed", summary.Processed, "skipped", len(summary.Skipped))
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Location().String())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

func (a *Application) close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}
}
