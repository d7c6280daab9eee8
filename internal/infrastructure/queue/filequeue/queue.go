// Package filequeue implements the durable work queue as a JSON file
// shared between the api and worker processes. Readers take a shared
// flock, writers an exclusive one, both with bounded retry; read
// failures degrade to an empty queue while exhausted write retries
// surface to the caller.
package filequeue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

const (
	defaultMaxRetries = 5
	defaultRetryDelay = 100 * time.Millisecond
)

type Queue struct {
	path       string
	maxRetries int
	retryDelay time.Duration
}

type Options struct {
	MaxRetries int
	RetryDelay time.Duration
}

func New(path string) (*Queue, error) {
	return NewWithOptions(path, Options{})
}

func NewWithOptions(path string, options Options) (*Queue, error) {
	maxRetries := options.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := options.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	q := &Queue{
		path:       path,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
	if err := q.ensureFile(); err != nil {
		return nil, fmt.Errorf("initialize queue file: %w", err)
	}
	return q, nil
}

// ensureFile creates an empty persisted queue on first use.
func (q *Queue) ensureFile() error {
	if _, err := os.Stat(q.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(q.path, []byte("[]"), 0o644)
}

// Enqueue appends the job unless one with the same document id is
// already queued; it reports whether the job was added.
func (q *Queue) Enqueue(ctx context.Context, job domain.QueueJob) (bool, error) {
	added := false
	err := q.withExclusive(ctx, func(jobs []domain.QueueJob) ([]domain.QueueJob, bool) {
		for _, existing := range jobs {
			if existing.DocumentID == job.DocumentID {
				return jobs, false
			}
		}
		added = true
		return append(jobs, job), true
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// Dequeue atomically removes and returns the oldest job, or nil when
// the queue is empty.
func (q *Queue) Dequeue(ctx context.Context) (*domain.QueueJob, error) {
	var head *domain.QueueJob
	err := q.withExclusive(ctx, func(jobs []domain.QueueJob) ([]domain.QueueJob, bool) {
		if len(jobs) == 0 {
			return jobs, false
		}
		job := jobs[0]
		head = &job
		return jobs[1:], true
	})
	if err != nil {
		return nil, err
	}
	return head, nil
}

func (q *Queue) Peek(ctx context.Context) (*domain.QueueJob, error) {
	jobs := q.readQueue(ctx)
	if len(jobs) == 0 {
		return nil, nil
	}
	job := jobs[0]
	return &job, nil
}

func (q *Queue) Size(ctx context.Context) (int, error) {
	return len(q.readQueue(ctx)), nil
}

func (q *Queue) Snapshot(ctx context.Context) ([]domain.QueueJob, error) {
	return q.readQueue(ctx), nil
}

func (q *Queue) Clear(ctx context.Context) error {
	return q.withExclusive(ctx, func([]domain.QueueJob) ([]domain.QueueJob, bool) {
		return []domain.QueueJob{}, true
	})
}

// readQueue takes a shared lock with bounded retries. Every failure
// mode degrades to an empty queue.
func (q *Queue) readQueue(ctx context.Context) []domain.QueueJob {
	lock := flock.New(q.path)
	for attempt := 1; attempt <= q.maxRetries; attempt++ {
		locked, err := lock.TryRLock()
		if err == nil && locked {
			jobs, readErr := q.readLocked()
			_ = lock.Unlock()
			if readErr == nil {
				return jobs
			}
			err = readErr
		}

		if attempt < q.maxRetries {
			slog.Debug("queue_read_retry", "attempt", attempt, "error", err)
			if !sleepCtx(ctx, q.retryDelay) {
				return nil
			}
		}
	}
	return nil
}

// withExclusive runs mutate under an exclusive lock and persists the
// returned slice when mutate reports a change. Lock or write failures
// are retried up to the bound and then propagate as fatal.
func (q *Queue) withExclusive(ctx context.Context, mutate func([]domain.QueueJob) ([]domain.QueueJob, bool)) error {
	lock := flock.New(q.path)
	var lastErr error
	for attempt := 1; attempt <= q.maxRetries; attempt++ {
		locked, err := lock.TryLock()
		if err != nil || !locked {
			if err == nil {
				err = errors.New("queue file is locked")
			}
			lastErr = err
		} else {
			err := q.mutateLocked(mutate)
			_ = lock.Unlock()
			if err == nil {
				return nil
			}
			lastErr = err
		}

		if attempt < q.maxRetries {
			slog.Debug("queue_write_retry", "attempt", attempt, "error", lastErr)
			if !sleepCtx(ctx, q.retryDelay) {
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("queue write after %d attempts: %w", q.maxRetries, lastErr)
}

func (q *Queue) mutateLocked(mutate func([]domain.QueueJob) ([]domain.QueueJob, bool)) error {
	jobs, err := q.readLocked()
	if err != nil {
		// A corrupt or unreadable file must not wedge producers: start
		// from an empty queue and let the write repair it.
		jobs = []domain.QueueJob{}
	}

	next, changed := mutate(jobs)
	if !changed {
		return nil
	}

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}
	if err := os.WriteFile(q.path, data, 0o644); err != nil {
		return fmt.Errorf("write queue file: %w", err)
	}
	return nil
}

func (q *Queue) readLocked() ([]domain.QueueJob, error) {
	data, err := os.ReadFile(q.path)
	if err != nil {
		return nil, fmt.Errorf("read queue file: %w", err)
	}
	if len(data) == 0 {
		return []domain.QueueJob{}, nil
	}

	var jobs []domain.QueueJob
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parse queue file: %w", err)
	}
	return jobs, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
