package ports

import (
	"context"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

// DocumentLifecycle is the inbound contract for document creation and
// processing-status transitions.
type DocumentLifecycle interface {
	CreateDocument(ctx context.Context, spec domain.DocumentSpec) (*domain.Document, bool, error)
	GetDocument(ctx context.Context, id string) (*domain.Document, error)
	ListDocuments(ctx context.Context, userID string, skip, limit int) ([]domain.Document, error)
	CountDocuments(ctx context.Context, userID string) (int, error)
	UpdateProcessingStatus(ctx context.Context, id string, status domain.ProcessingStatus) (bool, error)
	UpdateSummary(ctx context.Context, id string, summary string) (bool, error)
	DeleteDocument(ctx context.Context, id string) (bool, error)
}

// CategoryAssigner is the inbound contract for category CRUD and
// membership mutation.
type CategoryAssigner interface {
	Create(ctx context.Context, spec domain.CategorySpec) (*domain.Category, error)
	Get(ctx context.Context, id, userID string) (*domain.Category, error)
	ListAll(ctx context.Context, userID string, skip, limit int) ([]domain.Category, error)
	CountAll(ctx context.Context, userID string) (int, error)
	RenameOrUpdate(ctx context.Context, id string, patch domain.CategoryPatch, userID string) (*domain.Category, error)
	AddDocuments(ctx context.Context, id string, docIDs []string, userID string) (*domain.Category, error)
	RemoveDocuments(ctx context.Context, id string, docIDs []string, userID string) (*domain.Category, error)
	ListDocuments(ctx context.Context, id, userID string, skip, limit int) ([]domain.Document, error)
	Summary(ctx context.Context, id, userID string, docLimit int, newsOverride *string) (*domain.CategorySummary, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// Processor drives the single-document pipeline.
type Processor interface {
	ProcessDocument(ctx context.Context, documentID, userID string) domain.ProcessResult
}
