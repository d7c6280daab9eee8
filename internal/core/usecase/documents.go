package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/linkstash/internal/core/domain"
	"github.com/kirillkom/linkstash/internal/core/ports"
)

// DocumentUseCase enforces idempotent creation and processing-status
// transitions on top of the document store.
type DocumentUseCase struct {
	store ports.DocumentStore
}

func NewDocumentUseCase(store ports.DocumentStore) *DocumentUseCase {
	return &DocumentUseCase{store: store}
}

// CreateDocument is idempotent by (user_id, url): the second call for
// the same pair returns the existing row and was_created=false.
func (uc *DocumentUseCase) CreateDocument(ctx context.Context, spec domain.DocumentSpec) (*domain.Document, bool, error) {
	if strings.TrimSpace(spec.UserID) == "" || strings.TrimSpace(spec.URL) == "" {
		return nil, false, domain.WrapError(domain.ErrInvalidInput, "create document", errors.New("user_id and url are required"))
	}

	existing, err := uc.store.GetByUserAndURL(ctx, spec.UserID, spec.URL)
	if err != nil {
		return nil, false, fmt.Errorf("lookup document by user and url: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:               uuid.NewString(),
		UserID:           spec.UserID,
		URL:              spec.URL,
		DOM:              spec.DOM,
		Title:            spec.Title,
		Description:      spec.Description,
		ProcessingStatus: domain.StatusQueued,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.store.Insert(ctx, doc); err != nil {
		return nil, false, fmt.Errorf("insert document: %w", err)
	}
	return doc, true, nil
}

func (uc *DocumentUseCase) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := uc.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document by id: %w", err)
	}
	return doc, nil
}

func (uc *DocumentUseCase) ListDocuments(ctx context.Context, userID string, skip, limit int) ([]domain.Document, error) {
	docs, err := uc.store.List(ctx, userID, skip, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (uc *DocumentUseCase) CountDocuments(ctx context.Context, userID string) (int, error) {
	n, err := uc.store.Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// UpdateProcessingStatus advances the state machine. It returns false
// when the document is absent; the store stamps updated_at.
func (uc *DocumentUseCase) UpdateProcessingStatus(ctx context.Context, id string, status domain.ProcessingStatus) (bool, error) {
	ok, err := uc.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return false, fmt.Errorf("update processing status: %w", err)
	}
	return ok, nil
}

func (uc *DocumentUseCase) UpdateSummary(ctx context.Context, id string, summary string) (bool, error) {
	ok, err := uc.store.UpdateSummary(ctx, id, summary)
	if err != nil {
		return false, fmt.Errorf("update document summary: %w", err)
	}
	return ok, nil
}

func (uc *DocumentUseCase) DeleteDocument(ctx context.Context, id string) (bool, error) {
	ok, err := uc.store.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return ok, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}
