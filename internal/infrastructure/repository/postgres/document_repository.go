package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

const documentColumns = `id, user_id, url, dom, title, description, summary, processing_status, created_at, updated_at`

// DocumentRepository implements ports.DocumentStore. Absent rows come
// back as (nil, nil) / false, never as errors.
type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Insert(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
		doc.ID, doc.UserID, doc.URL, doc.DOM, doc.Title, doc.Description,
		doc.Summary, string(doc.ProcessingStatus), doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)
	return scanOptionalDocument(row)
}

func (r *DocumentRepository) GetByUserAndURL(ctx context.Context, userID, url string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE user_id = $1 AND url = $2
`, userID, url)
	return scanOptionalDocument(row)
}

func (r *DocumentRepository) List(ctx context.Context, userID string, skip, limit int) ([]domain.Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
`
	args := []any{}
	if userID != "" {
		query += "WHERE user_id = $1\n"
		args = append(args, userID)
	}
	query += fmt.Sprintf("ORDER BY created_at DESC\nOFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, skip, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return collectDocuments(rows)
}

func (r *DocumentRepository) ListByIDs(ctx context.Context, ids []string, limit int) ([]domain.Document, error) {
	if len(ids) == 0 {
		return []domain.Document{}, nil
	}

	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE id IN (SELECT jsonb_array_elements_text($1::jsonb))
ORDER BY created_at DESC
`
	args := []any{idListJSON(ids)}
	if limit > 0 {
		query += "LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents by ids: %w", err)
	}
	return collectDocuments(rows)
}

func (r *DocumentRepository) CountOwned(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*)
FROM documents
WHERE user_id = $1 AND id IN (SELECT jsonb_array_elements_text($2::jsonb))
`, userID, idListJSON(ids)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count owned documents: %w", err)
	}
	return n, nil
}

func (r *DocumentRepository) Count(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM documents`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.ProcessingStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET processing_status = $2, updated_at = $3
WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update processing status: %w", err)
	}
	return affected(result)
}

func (r *DocumentRepository) UpdateSummary(ctx context.Context, id string, summary string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET summary = $2, updated_at = $3
WHERE id = $1
`, id, summary, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update document summary: %w", err)
	}
	return affected(result)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return affected(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (domain.Document, error) {
	var doc domain.Document
	var status string
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.URL,
		&doc.DOM,
		&doc.Title,
		&doc.Description,
		&doc.Summary,
		&status,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return domain.Document{}, err
	}
	doc.ProcessingStatus = domain.ProcessingStatus(status)
	return doc, nil
}

func scanOptionalDocument(row *sql.Row) (*domain.Document, error) {
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]domain.Document, error) {
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

func affected(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}
