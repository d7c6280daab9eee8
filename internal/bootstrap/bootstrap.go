package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kirillkom/linkstash/internal/config"
	"github.com/kirillkom/linkstash/internal/core/ports"
	"github.com/kirillkom/linkstash/internal/core/usecase"
	"github.com/kirillkom/linkstash/internal/infrastructure/fetch"
	"github.com/kirillkom/linkstash/internal/infrastructure/llm/cortex"
	"github.com/kirillkom/linkstash/internal/infrastructure/queue/filequeue"
	"github.com/kirillkom/linkstash/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/linkstash/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Queue ports.DurableQueue

	DocumentUC *usecase.DocumentUseCase
	CategoryUC *usecase.CategoryUseCase
	ProcessUC  *usecase.ProcessDocumentUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	documentRepo := postgres.NewDocumentRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)

	if dir := filepath.Dir(cfg.QueuePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create queue dir: %w", err)
		}
	}
	queue, err := filequeue.New(cfg.QueuePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init durable queue: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	fetcher := fetch.New(fetch.Options{
		Timeout:            cfg.FetchTimeout,
		MaxBodyBytes:       cfg.FetchMaxBodyBytes,
		ResilienceExecutor: executor,
	})
	completer := cortex.NewWithOptions(cfg.CortexBaseURL, cfg.CortexAPIKey, cfg.CortexModel, cortex.Options{
		Timeout:            cfg.CortexTimeout,
		ResilienceExecutor: executor,
	})

	documentUC := usecase.NewDocumentUseCase(documentRepo)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo, documentRepo)
	processUC := usecase.NewProcessDocumentUseCase(documentUC, categoryUC, fetcher, completer)

	return &App{
		Config: cfg,
		Queue:  queue,

		DocumentUC: documentUC,
		CategoryUC: categoryUC,
		ProcessUC:  processUC,

		closeFn: func() {
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
