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

// CategoryUseCase enforces per-owner name uniqueness, membership
// mutation, and summary projection on top of the category store.
type CategoryUseCase struct {
	categories ports.CategoryStore
	documents  ports.DocumentStore
}

func NewCategoryUseCase(categories ports.CategoryStore, documents ports.DocumentStore) *CategoryUseCase {
	return &CategoryUseCase{categories: categories, documents: documents}
}

// Create fails with ErrNameConflict when the owner already has a
// category with the same name.
func (uc *CategoryUseCase) Create(ctx context.Context, spec domain.CategorySpec) (*domain.Category, error) {
	if strings.TrimSpace(spec.UserID) == "" || strings.TrimSpace(spec.Name) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create category", errors.New("user_id and name are required"))
	}

	existing, err := uc.categories.GetByUserAndName(ctx, spec.UserID, spec.Name)
	if err != nil {
		return nil, fmt.Errorf("lookup category by name: %w", err)
	}
	if existing != nil {
		return nil, domain.WrapError(domain.ErrNameConflict, "create category", fmt.Errorf("category %q already exists for user", spec.Name))
	}

	now := time.Now().UTC()
	cat := &domain.Category{
		ID:          uuid.NewString(),
		UserID:      spec.UserID,
		Name:        spec.Name,
		Description: spec.Description,
		DocumentIDs: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.categories.Insert(ctx, cat); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return cat, nil
}

func (uc *CategoryUseCase) Get(ctx context.Context, id, userID string) (*domain.Category, error) {
	cat, err := uc.categories.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return cat, nil
}

func (uc *CategoryUseCase) ListAll(ctx context.Context, userID string, skip, limit int) ([]domain.Category, error) {
	cats, err := uc.categories.List(ctx, userID, skip, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (uc *CategoryUseCase) CountAll(ctx context.Context, userID string) (int, error) {
	n, err := uc.categories.Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// RenameOrUpdate returns nil when the category is absent or not owned
// by userID. A rename that collides with a different category of the
// same owner fails with ErrNameConflict. An empty patch returns the
// category unchanged without bumping updated_at.
func (uc *CategoryUseCase) RenameOrUpdate(ctx context.Context, id string, patch domain.CategoryPatch, userID string) (*domain.Category, error) {
	existing, err := uc.categories.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}
	if existing == nil {
		return nil, nil
	}
	if patch.IsZero() {
		return existing, nil
	}

	if patch.Name != nil && *patch.Name != existing.Name {
		conflict, err := uc.categories.GetByUserAndName(ctx, userID, *patch.Name)
		if err != nil {
			return nil, fmt.Errorf("lookup category by new name: %w", err)
		}
		if conflict != nil && conflict.ID != id {
			return nil, domain.WrapError(domain.ErrNameConflict, "rename category", fmt.Errorf("category %q already exists for user", *patch.Name))
		}
	}

	updated, err := uc.categories.UpdateFields(ctx, id, userID, patch.Name, patch.Description)
	if err != nil {
		return nil, fmt.Errorf("update category fields: %w", err)
	}
	return updated, nil
}

// AddDocuments merges docIDs into the category membership. The whole
// batch is rejected with ErrInvalidInput unless every id resolves to a
// document owned by userID; duplicates are suppressed on merge.
func (uc *CategoryUseCase) AddDocuments(ctx context.Context, id string, docIDs []string, userID string) (*domain.Category, error) {
	cat, err := uc.categories.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get category for membership add: %w", err)
	}
	if cat == nil {
		return nil, nil
	}

	owned, err := uc.documents.CountOwned(ctx, userID, docIDs)
	if err != nil {
		return nil, fmt.Errorf("verify document ownership: %w", err)
	}
	if owned != len(docIDs) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "add documents to category",
			fmt.Errorf("%d of %d documents not found or not owned by user", len(docIDs)-owned, len(docIDs)))
	}

	updated, err := uc.categories.AddDocumentIDs(ctx, id, userID, docIDs)
	if err != nil {
		return nil, fmt.Errorf("add document ids: %w", err)
	}
	return updated, nil
}

// RemoveDocuments removes any matching ids unconditionally; ids that
// are not members are ignored.
func (uc *CategoryUseCase) RemoveDocuments(ctx context.Context, id string, docIDs []string, userID string) (*domain.Category, error) {
	cat, err := uc.categories.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get category for membership remove: %w", err)
	}
	if cat == nil {
		return nil, nil
	}

	updated, err := uc.categories.RemoveDocumentIDs(ctx, id, userID, docIDs)
	if err != nil {
		return nil, fmt.Errorf("remove document ids: %w", err)
	}
	return updated, nil
}

func (uc *CategoryUseCase) ListDocuments(ctx context.Context, id, userID string, skip, limit int) ([]domain.Document, error) {
	cat, err := uc.categories.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get category for document listing: %w", err)
	}
	if cat == nil || len(cat.DocumentIDs) == 0 {
		return []domain.Document{}, nil
	}

	docs, err := uc.documents.ListByIDs(ctx, cat.DocumentIDs, 0)
	if err != nil {
		return nil, fmt.Errorf("list category documents: %w", err)
	}
	return paginate(docs, skip, normalizeLimit(limit)), nil
}

// Summary projects the category into a view with the docLimit most
// recently created members and the full membership count.
func (uc *CategoryUseCase) Summary(ctx context.Context, id, userID string, docLimit int, newsOverride *string) (*domain.CategorySummary, error) {
	cat, err := uc.categories.GetOwned(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("get category for summary: %w", err)
	}
	if cat == nil {
		return nil, nil
	}
	if docLimit <= 0 {
		docLimit = 3
	}

	representative := []domain.Document{}
	if len(cat.DocumentIDs) > 0 {
		representative, err = uc.documents.ListByIDs(ctx, cat.DocumentIDs, docLimit)
		if err != nil {
			return nil, fmt.Errorf("list representative documents: %w", err)
		}
	}

	news := cat.Description
	if newsOverride != nil {
		news = *newsOverride
	}

	return &domain.CategorySummary{
		Category:                *cat,
		CategoryNews:            news,
		RepresentativeDocuments: representative,
		TotalDocuments:          len(cat.DocumentIDs),
	}, nil
}

// Delete removes the category only; member documents are untouched.
func (uc *CategoryUseCase) Delete(ctx context.Context, id, userID string) (bool, error) {
	ok, err := uc.categories.Delete(ctx, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return ok, nil
}

func paginate(docs []domain.Document, skip, limit int) []domain.Document {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(docs) {
		return []domain.Document{}
	}
	end := skip + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[skip:end]
}
