package ports

import (
	"context"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

// DocumentStore persists document rows. Absent rows are reported as
// (nil, nil) from reads and false from mutations, never as errors.
type DocumentStore interface {
	Insert(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetByUserAndURL(ctx context.Context, userID, url string) (*domain.Document, error)
	// List returns documents sorted by created_at descending. An empty
	// userID lists across all owners.
	List(ctx context.Context, userID string, skip, limit int) ([]domain.Document, error)
	// ListByIDs returns the subset of ids that exist, sorted by
	// created_at descending, capped at limit (0 means no cap).
	ListByIDs(ctx context.Context, ids []string, limit int) ([]domain.Document, error)
	CountOwned(ctx context.Context, userID string, ids []string) (int, error)
	Count(ctx context.Context, userID string) (int, error)
	UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus) (bool, error)
	UpdateSummary(ctx context.Context, id string, summary string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CategoryStore persists category rows. Membership mutations are single
// atomic statements at the store level so concurrent add/remove calls
// on the same category id cannot lose updates.
type CategoryStore interface {
	Insert(ctx context.Context, cat *domain.Category) error
	GetOwned(ctx context.Context, id, userID string) (*domain.Category, error)
	GetByUserAndName(ctx context.Context, userID, name string) (*domain.Category, error)
	List(ctx context.Context, userID string, skip, limit int) ([]domain.Category, error)
	Count(ctx context.Context, userID string) (int, error)
	UpdateFields(ctx context.Context, id, userID string, name, description *string) (*domain.Category, error)
	// AddDocumentIDs appends ids in order, suppressing duplicates.
	AddDocumentIDs(ctx context.Context, id, userID string, docIDs []string) (*domain.Category, error)
	RemoveDocumentIDs(ctx context.Context, id, userID string, docIDs []string) (*domain.Category, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// DurableQueue is the cross-process work queue. FIFO, de-duplicated by
// document id, durable across restarts.
type DurableQueue interface {
	Enqueue(ctx context.Context, job domain.QueueJob) (bool, error)
	Dequeue(ctx context.Context) (*domain.QueueJob, error)
	Peek(ctx context.Context) (*domain.QueueJob, error)
	Size(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Snapshot(ctx context.Context) ([]domain.QueueJob, error)
}

// ContentFetcher resolves a URL to plain text.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// CompletionOptions tune a single LLM round trip.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
}

// Completer is the external text-completion service. Complete blocks
// for the full round trip; CompleteStream delivers chunks through the
// callback and is not used by the processing pipeline.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error)
	CompleteStream(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions, onChunk func(string) error) error
}
