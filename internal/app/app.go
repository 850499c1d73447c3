package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NewsCredibility/internal/config"
	"NewsCredibility/internal/credibility"
	"NewsCredibility/internal/infrastructure/llm"
	"NewsCredibility/internal/infrastructure/ml"
	"NewsCredibility/internal/infrastructure/parser"
	"NewsCredibility/internal/infrastructure/scheduler"
	"NewsCredibility/internal/infrastructure/storage"
	"NewsCredibility/internal/infrastructure/telegram"
	"NewsCredibility/internal/logging"
	"NewsCredibility/internal/ports"
	"NewsCredibility/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	repo      *storage.Repository
	manager   *usecase.ScoreManager
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
}

// New opens storage and builds the scoring stack.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	repo, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	classifier := newClassifier(cfg, baseLogger)
	engine := credibility.NewEngine(credibility.EngineDeps{
		Options:    cfg.EngineOptions(),
		Classifier: credibility.NewClassifierAdapter(classifier, baseLogger.With("component", "classifier")),
		Logger:     baseLogger.With("component", "engine"),
	})

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	manager := usecase.NewScoreManager(usecase.ScoreManagerDeps{
		Engine:     engine,
		Articles:   repo,
		Users:      repo,
		Normalizer: parser.HTMLNormalizer{},
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "score_manager"),
	})

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Manager:  manager,
		Articles: repo,
		Users:    repo,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	var sched *usecase.Scheduler
	if cfg.Scheduler.Enabled {
		driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
		sched = usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		repo:      repo,
		manager:   manager,
		pipeline:  pipeline,
		scheduler: sched,
	}, nil
}

func newClassifier(cfg config.Config, logger *slog.Logger) ports.Classifier {
	switch cfg.ClassifierKind() {
	case "http":
		logger.Info("using inference service classifier", "url", cfg.Classifier.InferenceURL)
		return ml.NewClient(cfg.Classifier.InferenceURL, cfg.Classifier.APIKey, cfg.Classifier.RequestsPerSecond)
	case "openai":
		logger.Info("using chat model classifier", "model", cfg.OpenAI.Model)
		return llm.NewClassifier(cfg.OpenAI)
	default:
		logger.Info("no classifier configured, NLP scoring is heuristic only")
		return nil
	}
}

// Manager exposes the score manager for embedding callers.
func (a *Application) Manager() *usecase.ScoreManager {
	return a.manager
}

// Repository exposes the storage adapter for seeding and audit reads.
func (a *Application) Repository() *storage.Repository {
	return a.repo
}

// Run performs one full recompute, then keeps the cron schedule running
// (when enabled) until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if err := a.pipeline.RecomputeAll(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		a.logger.Error("initial recompute finished with errors", "error", err)
	}

	if a.scheduler == nil {
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.scheduler.Stop(stopCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("scheduler stopped")
	return nil
}

func (a *Application) close() {
	if a.repo == nil {
		return
	}
	if err := a.repo.Close(); err != nil {
		a.logger.Warn("close storage", "error", err)
	}
}
