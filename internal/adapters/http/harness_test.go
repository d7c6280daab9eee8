package httpadapter

import (
	"context"
	"net/http"

	"github.com/kirillkom/linkstash/internal/config"
	"github.com/kirillkom/linkstash/internal/core/domain"
)

// lifecycleFake answers document calls with canned values.
type lifecycleFake struct {
	doc        *domain.Document
	wasCreated bool
	createErr  error
	docs       []domain.Document
	total      int
	deleted    bool
}

func (f *lifecycleFake) CreateDocument(context.Context, domain.DocumentSpec) (*domain.Document, bool, error) {
	if f.createErr != nil {
		return nil, false, f.createErr
	}
	return f.doc, f.wasCreated, nil
}

func (f *lifecycleFake) GetDocument(context.Context, string) (*domain.Document, error) {
	return f.doc, nil
}

func (f *lifecycleFake) ListDocuments(context.Context, string, int, int) ([]domain.Document, error) {
	return f.docs, nil
}

func (f *lifecycleFake) CountDocuments(context.Context, string) (int, error) {
	return f.total, nil
}

func (f *lifecycleFake) UpdateProcessingStatus(context.Context, string, domain.ProcessingStatus) (bool, error) {
	return true, nil
}

func (f *lifecycleFake) UpdateSummary(context.Context, string, string) (bool, error) {
	return true, nil
}

func (f *lifecycleFake) DeleteDocument(context.Context, string) (bool, error) {
	return f.deleted, nil
}

// assignerFake answers category calls with canned values.
type assignerFake struct {
	cat       *domain.Category
	cats      []domain.Category
	total     int
	summary   *domain.CategorySummary
	docs      []domain.Document
	deleted   bool
	createErr error
	mutateErr error

	lastDocIDs []string
	lastUserID string
}

func (f *assignerFake) Create(context.Context, domain.CategorySpec) (*domain.Category, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.cat, nil
}

func (f *assignerFake) Get(context.Context, string, string) (*domain.Category, error) {
	return f.cat, nil
}

func (f *assignerFake) ListAll(context.Context, string, int, int) ([]domain.Category, error) {
	return f.cats, nil
}

func (f *assignerFake) CountAll(context.Context, string) (int, error) { return f.total, nil }

func (f *assignerFake) RenameOrUpdate(context.Context, string, domain.CategoryPatch, string) (*domain.Category, error) {
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	return f.cat, nil
}

func (f *assignerFake) AddDocuments(_ context.Context, _ string, docIDs []string, userID string) (*domain.Category, error) {
	f.lastDocIDs = docIDs
	f.lastUserID = userID
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	return f.cat, nil
}

func (f *assignerFake) RemoveDocuments(_ context.Context, _ string, docIDs []string, userID string) (*domain.Category, error) {
	f.lastDocIDs = docIDs
	f.lastUserID = userID
	return f.cat, nil
}

func (f *assignerFake) ListDocuments(context.Context, string, string, int, int) ([]domain.Document, error) {
	return f.docs, nil
}

func (f *assignerFake) Summary(context.Context, string, string, int, *string) (*domain.CategorySummary, error) {
	return f.summary, nil
}

func (f *assignerFake) Delete(context.Context, string, string) (bool, error) {
	return f.deleted, nil
}

type queueFake struct {
	jobs       []domain.QueueJob
	enqueueErr error
}

func (f *queueFake) Enqueue(_ context.Context, job domain.QueueJob) (bool, error) {
	if f.enqueueErr != nil {
		return false, f.enqueueErr
	}
	for _, existing := range f.jobs {
		if existing.DocumentID == job.DocumentID {
			return false, nil
		}
	}
	f.jobs = append(f.jobs, job)
	return true, nil
}

func (f *queueFake) Dequeue(context.Context) (*domain.QueueJob, error) {
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

type streamerFake struct {
	chunks []string
	err    error
}

func (f *streamerFake) SummarizeURLStream(_ context.Context, _ string, onChunk func(string) error) error {
	if f.err != nil {
		return f.err
	}
	for _, chunk := range f.chunks {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return nil
}

type routerFixture struct {
	lifecycle *lifecycleFake
	assigner  *assignerFake
	queue     *queueFake
	streamer  *streamerFake
}

func newTestHandler(cfg config.Config, fixture *routerFixture) http.Handler {
	if fixture.lifecycle == nil {
		fixture.lifecycle = &lifecycleFake{}
	}
	if fixture.assigner == nil {
		fixture.assigner = &assignerFake{}
	}
	if fixture.queue == nil {
		fixture.queue = &queueFake{}
	}
	if fixture.streamer == nil {
		fixture.streamer = &streamerFake{}
	}
	router := NewRouter(cfg, fixture.lifecycle, fixture.assigner, fixture.queue, fixture.streamer, nil)
	return router.Handler()
}
