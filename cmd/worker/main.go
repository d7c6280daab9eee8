package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/linkstash/internal/bootstrap"
	"github.com/kirillkom/linkstash/internal/config"
	"github.com/kirillkom/linkstash/internal/observability/logging"
	"github.com/kirillkom/linkstash/internal/observability/metrics"
	"github.com/kirillkom/linkstash/internal/worker"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_error", "error", err)
		}
	}()

	w := worker.New(app.Queue, app.DocumentUC, app.ProcessUC, worker.Options{
		Service:        "worker",
		PollInterval:   cfg.WorkerPollInterval,
		ProcessTimeout: cfg.WorkerProcessTimeout,
		Metrics:        workerMetrics,
	})
	_ = w.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
