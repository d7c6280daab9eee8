package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

type queueFake struct {
	jobs       []domain.QueueJob
	dequeueErr error
}

func (f *queueFake) Enqueue(_ context.Context, job domain.QueueJob) (bool, error) {
	f.jobs = append(f.jobs, job)
	return true, nil
}

func (f *queueFake) Dequeue(context.Context) (*domain.QueueJob, error) {
	if f.dequeueErr != nil {
		return nil, f.dequeueErr
	}
	if len(f.jobs) == 0 {
		return nil, nil
	}
	job := f.jobs[0]
	f.jobs = f.jobs[1:]
	return &job, nil
}

func (f *queueFake) Peek(context.Context) (*domain.QueueJob, error) {
	if len(f.jobs) == 0 {
		return nil, nil
	}
	job := f.jobs[0]
	return &job, nil
}

func (f *queueFake) Size(context.Context) (int, error) { return len(f.jobs), nil }

func (f *queueFake) Clear(context.Context) error {
	f.jobs = nil
	return nil
}

func (f *queueFake) Snapshot(context.Context) ([]domain.QueueJob, error) {
	return append([]domain.QueueJob{}, f.jobs...), nil
}

type lifecycleFake struct {
	statusCalls []domain.ProcessingStatus
	missing     bool
	statusErr   error
}

func (f *lifecycleFake) CreateDocument(context.Context, domain.DocumentSpec) (*domain.Document, bool, error) {
	return nil, false, nil
}

func (f *lifecycleFake) GetDocument(context.Context, string) (*domain.Document, error) {
	return nil, nil
}

func (f *lifecycleFake) ListDocuments(context.Context, string, int, int) ([]domain.Document, error) {
	return nil, nil
}

func (f *lifecycleFake) CountDocuments(context.Context, string) (int, error) { return 0, nil }

func (f *lifecycleFake) UpdateProcessingStatus(_ context.Context, _ string, status domain.ProcessingStatus) (bool, error) {
	f.statusCalls = append(f.statusCalls, status)
	if f.statusErr != nil {
		return false, f.statusErr
	}
	return !f.missing, nil
}

func (f *lifecycleFake) UpdateSummary(context.Context, string, string) (bool, error) {
	return true, nil
}

func (f *lifecycleFake) DeleteDocument(context.Context, string) (bool, error) { return true, nil }

type processorFake struct {
	result    domain.ProcessResult
	panicWith any
	calls     int
}

func (f *processorFake) ProcessDocument(_ context.Context, documentID, _ string) domain.ProcessResult {
	f.calls++
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	result := f.result
	result.DocumentID = documentID
	return result
}

func testJob(documentID string) domain.QueueJob {
	return domain.QueueJob{
		DocumentID: documentID,
		UserID:     "user-1",
		QueuedAt:   time.Now().UTC().Add(-time.Second),
	}
}

func TestRunOnceMarksCompleteOnSuccess(t *testing.T) {
	queue := &queueFake{jobs: []domain.QueueJob{testJob("doc-1")}}
	lifecycle := &lifecycleFake{}
	processor := &processorFake{result: domain.ProcessResult{Success: true}}
	w := New(queue, lifecycle, processor, Options{})

	processed, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if !processed {
		t.Fatalf("RunOnce() = false, want true")
	}
	want := []domain.ProcessingStatus{domain.StatusInProgress, domain.StatusComplete}
	if len(lifecycle.statusCalls) != 2 || lifecycle.statusCalls[0] != want[0] || lifecycle.statusCalls[1] != want[1] {
		t.Fatalf("status sequence = %v, want %v", lifecycle.statusCalls, want)
	}
}

func TestRunOnceMarksFailedOnPipelineFailure(t *testing.T) {
	queue := &queueFake{jobs: []domain.QueueJob{testJob("doc-1")}}
	lifecycle := &lifecycleFake{}
	processor := &processorFake{result: domain.ProcessResult{Success: false, Message: "error fetching content"}}
	w := New(queue, lifecycle, processor, Options{})

	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(lifecycle.statusCalls) != 2 || lifecycle.statusCalls[1] != domain.StatusFailed {
		t.Fatalf("status sequence = %v, want final FAILED", lifecycle.statusCalls)
	}
}

func TestRunOnceToleratesStatusWriteFailureOnFailedPath(t *testing.T) {
	queue := &queueFake{jobs: []domain.QueueJob{testJob("doc-1")}}
	lifecycle := &lifecycleFake{statusErr: errors.New("connection refused")}
	processor := &processorFake{result: domain.ProcessResult{Success: false, Message: "error fetching content"}}
	w := New(queue, lifecycle, processor, Options{})

	processed, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v, want nil despite status write failures", err)
	}
	if !processed {
		t.Fatalf("RunOnce() = false, want true (the job was consumed)")
	}
	if processor.calls != 1 {
		t.Fatalf("processor ran %d times, want 1", processor.calls)
	}
	want := []domain.ProcessingStatus{domain.StatusInProgress, domain.StatusFailed}
	if len(lifecycle.statusCalls) != 2 || lifecycle.statusCalls[0] != want[0] || lifecycle.statusCalls[1] != want[1] {
		t.Fatalf("status sequence = %v, want %v", lifecycle.statusCalls, want)
	}
}

func TestRunOnceRecoversFromPanic(t *testing.T) {
	queue := &queueFake{jobs: []domain.QueueJob{testJob("doc-1")}}
	lifecycle := &lifecycleFake{}
	processor := &processorFake{panicWith: "boom"}
	w := New(queue, lifecycle, processor, Options{})

	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(lifecycle.statusCalls) != 2 || lifecycle.statusCalls[1] != domain.StatusFailed {
		t.Fatalf("status sequence = %v, want final FAILED after panic", lifecycle.statusCalls)
	}
}

func TestRunOnceSkipsJobForDeletedDocument(t *testing.T) {
	queue := &queueFake{jobs: []domain.QueueJob{testJob("doc-1")}}
	lifecycle := &lifecycleFake{missing: true}
	processor := &processorFake{result: domain.ProcessResult{Success: true}}
	w := New(queue, lifecycle, processor, Options{})

	processed, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if !processed {
		t.Fatalf("RunOnce() = false, want true (the job was consumed)")
	}
	if processor.calls != 0 {
		t.Fatalf("processor ran %d times for a deleted document, want 0", processor.calls)
	}
}

func TestRunOnceReportsEmptyQueue(t *testing.T) {
	w := New(&queueFake{}, &lifecycleFake{}, &processorFake{}, Options{})

	processed, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if processed {
		t.Fatalf("RunOnce() = true on empty queue, want false")
	}
}

func TestRunOnceSurfacesDequeueError(t *testing.T) {
	queue := &queueFake{dequeueErr: errors.New("queue file is locked")}
	w := New(queue, &lifecycleFake{}, &processorFake{}, Options{})

	_, err := w.RunOnce(context.Background())
	if err == nil {
		t.Fatalf("expected dequeue error")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	queue := &queueFake{}
	w := New(queue, &lifecycleFake{}, &processorFake{}, Options{PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run() did not stop after cancel")
	}
}
