package app

import (
	"context"
	"fmt"
	"log/slog"

	"flashpost/internal/config"
	"flashpost/internal/domain"
	"flashpost/internal/infrastructure/chaincatcher"
	"flashpost/internal/infrastructure/llm"
	"flashpost/internal/infrastructure/scheduler"
	"flashpost/internal/infrastructure/storage"
	"flashpost/internal/infrastructure/typefully"
	"flashpost/internal/logging"
	"flashpost/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	store    *storage.PostgresStore
}

// New builds a runnable application instance: opens the dedup store, wires
// the API clients, and assembles the pipeline.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open dedup store: %w", err)
	}

	source := chaincatcher.NewClient(cfg.Source, nil)
	summarizer := llm.NewSummarizer(cfg.Completion)
	publisher := typefully.NewClient(cfg.Publisher, baseLogger.With("component", "publisher"))

	variants := make([]domain.Variant, 0, len(cfg.Variants))
	for _, v := range cfg.Variants {
		variants = append(variants, domain.Variant{
			Tag:        v.Tag,
			Prefix:     v.Prefix,
			Template:   v.Template,
			AccountKey: v.AccountKey,
		})
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:         source,
		Store:          store,
		Summarizer:     summarizer,
		Publisher:      publisher,
		Variants:       variants,
		InterPostDelay: cfg.Publisher.InterPostDelay(),
		Logger:         baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline, store: store}, nil
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context) (domain.Outcome, error) {
	return a.pipeline.Run(ctx)
}

// Poll keeps re-running the pipeline on the configured cadence until the
// context is cancelled.
func (a *Application) Poll(ctx context.Context) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval())
	runner := usecase.NewRunner(driver, a.pipeline, a.logger.With("component", "runner"))

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start runner: %w", err)
	}

	<-ctx.Done()
	return runner.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
