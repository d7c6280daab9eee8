package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

const categoryColumns = `id, user_id, name, description, document_ids, created_at, updated_at`

// CategoryRepository implements ports.CategoryStore. Membership is a
// jsonb array mutated by single UPDATE statements, so concurrent adds
// and removes on the same category cannot lose updates.
type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Insert(ctx context.Context, cat *domain.Category) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO categories (`+categoryColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		cat.ID, cat.UserID, cat.Name, cat.Description, idListJSON(cat.DocumentIDs),
		cat.CreatedAt, cat.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetOwned(ctx context.Context, id, userID string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+categoryColumns+`
FROM categories
WHERE id = $1 AND user_id = $2
`, id, userID)
	return scanOptionalCategory(row)
}

func (r *CategoryRepository) GetByUserAndName(ctx context.Context, userID, name string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+categoryColumns+`
FROM categories
WHERE user_id = $1 AND name = $2
`, userID, name)
	return scanOptionalCategory(row)
}

func (r *CategoryRepository) List(ctx context.Context, userID string, skip, limit int) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+categoryColumns+`
FROM categories
WHERE user_id = $1
ORDER BY created_at DESC
OFFSET $2 LIMIT $3
`, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return collectCategories(rows)
}

func (r *CategoryRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (r *CategoryRepository) UpdateFields(ctx context.Context, id, userID string, name, description *string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE categories
SET name = COALESCE($3, name),
	description = COALESCE($4, description),
	updated_at = $5
WHERE id = $1 AND user_id = $2
RETURNING `+categoryColumns, id, userID, name, description, time.Now().UTC())
	return scanOptionalCategory(row)
}

// AddDocumentIDs appends only the ids not already present, preserving
// both the stored order and the input order, in one atomic statement.
func (r *CategoryRepository) AddDocumentIDs(ctx context.Context, id, userID string, docIDs []string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE categories
SET document_ids = document_ids || (
		SELECT COALESCE(jsonb_agg(v ORDER BY ord), '[]'::jsonb)
		FROM jsonb_array_elements_text($3::jsonb) WITH ORDINALITY AS t(v, ord)
		WHERE NOT document_ids ? v
	),
	updated_at = $4
WHERE id = $1 AND user_id = $2
RETURNING `+categoryColumns, id, userID, idListJSON(dedupe(docIDs)), time.Now().UTC())
	return scanOptionalCategory(row)
}

func (r *CategoryRepository) RemoveDocumentIDs(ctx context.Context, id, userID string, docIDs []string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE categories
SET document_ids = (
		SELECT COALESCE(jsonb_agg(v ORDER BY ord), '[]'::jsonb)
		FROM jsonb_array_elements_text(document_ids) WITH ORDINALITY AS t(v, ord)
		WHERE NOT ($3::jsonb ? v)
	),
	updated_at = $4
WHERE id = $1 AND user_id = $2
RETURNING `+categoryColumns, id, userID, idListJSON(docIDs), time.Now().UTC())
	return scanOptionalCategory(row)
}

func (r *CategoryRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return affected(result)
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var cat domain.Category
	var idsRaw []byte
	err := row.Scan(
		&cat.ID,
		&cat.UserID,
		&cat.Name,
		&cat.Description,
		&idsRaw,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)
	if err != nil {
		return domain.Category{}, err
	}
	if err := json.Unmarshal(idsRaw, &cat.DocumentIDs); err != nil {
		return domain.Category{}, fmt.Errorf("unmarshal document_ids: %w", err)
	}
	if cat.DocumentIDs == nil {
		cat.DocumentIDs = []string{}
	}
	return cat, nil
}

func scanOptionalCategory(row *sql.Row) (*domain.Category, error) {
	cat, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &cat, nil
}

func collectCategories(rows *sql.Rows) ([]domain.Category, error) {
	defer rows.Close()

	out := make([]domain.Category, 0)
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
