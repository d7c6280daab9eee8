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

	httpadapter "github.com/kirillkom/linkstash/internal/adapters/http"
	"github.com/kirillkom/linkstash/internal/bootstrap"
	"github.com/kirillkom/linkstash/internal/config"
	"github.com/kirillkom/linkstash/internal/observability/logging"
	"github.com/kirillkom/linkstash/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(cfg, app.DocumentUC, app.CategoryUC, app.Queue, app.ProcessUC, httpMetrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", httpMetrics.Handler())
	mux.Handle("/", router.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
