package filequeue

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

func newTestQueue(t *testing.T) (*Queue, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.json")
	q, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return q, path
}

func job(documentID string) domain.QueueJob {
	return domain.QueueJob{
		DocumentID: documentID,
		UserID:     "user-1",
		QueuedAt:   time.Now().UTC(),
	}
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	for _, id := range []string{"doc-1", "doc-2", "doc-3"} {
		added, err := q.Enqueue(ctx, job(id))
		if err != nil {
			t.Fatalf("Enqueue(%s) error = %v", id, err)
		}
		if !added {
			t.Fatalf("Enqueue(%s) = false, want true", id)
		}
	}

	for _, want := range []string{"doc-1", "doc-2", "doc-3"} {
		got, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue() error = %v", err)
		}
		if got == nil || got.DocumentID != want {
			t.Fatalf("Dequeue() = %+v, want document %s", got, want)
		}
	}

	got, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue() on empty queue error = %v", err)
	}
	if got != nil {
		t.Fatalf("Dequeue() on empty queue = %+v, want nil", got)
	}
}

func TestEnqueueDeduplicatesByDocumentID(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	added, err := q.Enqueue(ctx, job("doc-1"))
	if err != nil || !added {
		t.Fatalf("first Enqueue() = (%v, %v), want (true, nil)", added, err)
	}
	added, err = q.Enqueue(ctx, job("doc-1"))
	if err != nil {
		t.Fatalf("duplicate Enqueue() error = %v", err)
	}
	if added {
		t.Fatalf("duplicate Enqueue() = true, want false")
	}

	size, err := q.Size(ctx)
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if size != 1 {
		t.Fatalf("Size() = %d, want 1", size)
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, job("doc-1")); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	head, err := q.Peek(ctx)
	if err != nil {
		t.Fatalf("Peek() error = %v", err)
	}
	if head == nil || head.DocumentID != "doc-1" {
		t.Fatalf("Peek() = %+v, want doc-1", head)
	}

	size, _ := q.Size(ctx)
	if size != 1 {
		t.Fatalf("Size() after Peek() = %d, want 1", size)
	}
}

func TestClearEmptiesQueue(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	_, _ = q.Enqueue(ctx, job("doc-1"))
	_, _ = q.Enqueue(ctx, job("doc-2"))

	if err := q.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	size, _ := q.Size(ctx)
	if size != 0 {
		t.Fatalf("Size() after Clear() = %d, want 0", size)
	}
}

func TestQueueSurvivesRestart(t *testing.T) {
	q, path := newTestQueue(t)
	ctx := context.Background()

	if _, err := q.Enqueue(ctx, job("doc-1")); err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() on existing file error = %v", err)
	}
	got, err := reopened.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue() after reopen error = %v", err)
	}
	if got == nil || got.DocumentID != "doc-1" {
		t.Fatalf("Dequeue() after reopen = %+v, want doc-1", got)
	}
}

func TestEnqueueFailsAfterExhaustedWriteRetries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	q, err := NewWithOptions(path, Options{MaxRetries: 3, RetryDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}

	holder := flock.New(path)
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock() = (%v, %v), want held lock", locked, err)
	}
	defer func() { _ = holder.Unlock() }()

	_, err = q.Enqueue(context.Background(), job("doc-1"))
	if err == nil {
		t.Fatalf("Enqueue() on a locked file = nil error, want failure after retries")
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("Enqueue() error = %v, want exhausted-retry error", err)
	}
}

func TestEnqueueRepairsCorruptFile(t *testing.T) {
	q, path := newTestQueue(t)
	ctx := context.Background()

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt file write error = %v", err)
	}

	added, err := q.Enqueue(ctx, job("doc-1"))
	if err != nil {
		t.Fatalf("Enqueue() over corrupt file error = %v", err)
	}
	if !added {
		t.Fatalf("Enqueue() over corrupt file = false, want true")
	}

	jobs, err := q.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(jobs) != 1 || jobs[0].DocumentID != "doc-1" {
		t.Fatalf("Snapshot() = %+v, want exactly doc-1", jobs)
	}
}
