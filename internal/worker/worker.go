// Package worker runs the single-consumer polling loop over the
// durable queue. One job is in flight at a time; a drained queue parks
// the loop for the poll interval.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/linkstash/internal/core/domain"
	"github.com/kirillkom/linkstash/internal/core/ports"
	"github.com/kirillkom/linkstash/internal/observability/metrics"
)

const defaultPollInterval = 5 * time.Second

type Worker struct {
	queue     ports.DurableQueue
	documents ports.DocumentLifecycle
	processor ports.Processor
	metrics   *metrics.WorkerMetrics

	service        string
	pollInterval   time.Duration
	processTimeout time.Duration
}

type Options struct {
	Service        string
	PollInterval   time.Duration
	ProcessTimeout time.Duration
	Metrics        *metrics.WorkerMetrics
}

func New(
	queue ports.DurableQueue,
	documents ports.DocumentLifecycle,
	processor ports.Processor,
	options Options,
) *Worker {
	pollInterval := options.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	service := options.Service
	if service == "" {
		service = "worker"
	}
	return &Worker{
		queue:          queue,
		documents:      documents,
		processor:      processor,
		metrics:        options.Metrics,
		service:        service,
		pollInterval:   pollInterval,
		processTimeout: options.ProcessTimeout,
	}
}

// Run polls until ctx is cancelled. Per-job failures are terminal for
// the document, never for the loop.
func (w *Worker) Run(ctx context.Context) error {
	slog.Info("worker_started", "poll_interval", w.pollInterval.String())
	for {
		if err := ctx.Err(); err != nil {
			slog.Info("worker_stopped")
			return err
		}

		processed, err := w.RunOnce(ctx)
		if err != nil {
			slog.Error("worker_poll_failed", "error", err)
		}
		if processed {
			continue
		}

		timer := time.NewTimer(w.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("worker_stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RunOnce drains at most one job and reports whether it did.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, fmt.Errorf("dequeue job: %w", err)
	}
	w.observeDepth(ctx)
	if job == nil {
		return false, nil
	}

	w.handleJob(ctx, *job)
	return true, nil
}

func (w *Worker) handleJob(ctx context.Context, job domain.QueueJob) {
	if w.metrics != nil {
		w.metrics.ObserveQueueLag(w.service, time.Since(job.QueuedAt))
		w.metrics.StartDocument()
	}
	start := time.Now()

	slog.Info("document_processing_started",
		"document_id", job.DocumentID,
		"user_id", job.UserID,
	)

	found, err := w.documents.UpdateProcessingStatus(ctx, job.DocumentID, domain.StatusInProgress)
	if err != nil {
		slog.Error("status_update_failed",
			"document_id", job.DocumentID,
			"status", domain.StatusInProgress,
			"error", err,
		)
	}
	if err == nil && !found {
		// The document was deleted after enqueue; the job is dropped.
		slog.Warn("document_missing_for_job", "document_id", job.DocumentID)
		if w.metrics != nil {
			w.metrics.FinishDocument(w.service, time.Since(start), false)
		}
		return
	}

	result := w.process(ctx, job)

	terminal := domain.StatusComplete
	if !result.Success {
		terminal = domain.StatusFailed
	}
	// A failed terminal-status write leaves the row IN_PROGRESS; it is
	// logged and the loop moves on rather than retrying the document.
	if _, err := w.documents.UpdateProcessingStatus(ctx, job.DocumentID, terminal); err != nil {
		slog.Error("status_update_failed",
			"document_id", job.DocumentID,
			"status", terminal,
			"error", err,
		)
	}

	if result.Success {
		slog.Info("document_processing_complete",
			"document_id", job.DocumentID,
			"category_id", result.CategoryID,
			"content_length", result.ContentLength,
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
	} else {
		slog.Error("document_processing_failed",
			"document_id", job.DocumentID,
			"message", result.Message,
		)
	}

	if w.metrics != nil {
		w.metrics.FinishDocument(w.service, time.Since(start), result.Success)
	}
}

// process runs the pipeline under the per-job timeout. A panic in the
// pipeline is converted into a failed result so one poisoned job cannot
// kill the loop.
func (w *Worker) process(ctx context.Context, job domain.QueueJob) (result domain.ProcessResult) {
	processCtx := ctx
	if w.processTimeout > 0 {
		var cancel context.CancelFunc
		processCtx, cancel = context.WithTimeout(ctx, w.processTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("document_processing_panic", "document_id", job.DocumentID, "panic", r)
			result = domain.ProcessResult{
				Success:    false,
				DocumentID: job.DocumentID,
				Message:    fmt.Sprintf("processing panic: %v", r),
			}
		}
	}()

	return w.processor.ProcessDocument(processCtx, job.DocumentID, job.UserID)
}

func (w *Worker) observeDepth(ctx context.Context) {
	if w.metrics == nil {
		return
	}
	depth, err := w.queue.Size(ctx)
	if err != nil {
		return
	}
	w.metrics.SetQueueDepth(depth)
}
