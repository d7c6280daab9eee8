package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/linkstash/internal/core/domain"
)

func newCategoryRepoWithMock(t *testing.T) (*CategoryRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &CategoryRepository{db: db}, mock, func() { _ = db.Close() }
}

func categoryRow(cat domain.Category, idsJSON string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "name", "description", "document_ids", "created_at", "updated_at",
	}).AddRow(cat.ID, cat.UserID, cat.Name, cat.Description, []byte(idsJSON), cat.CreatedAt, cat.UpdatedAt)
}

func TestCategoryGetByUserAndNameReturnsNilWhenAbsent(t *testing.T) {
	repo, mock, done := newCategoryRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, user_id, name").
		WithArgs("user-1", "Tech").
		WillReturnError(sql.ErrNoRows)

	cat, err := repo.GetByUserAndName(context.Background(), "user-1", "Tech")
	if err != nil {
		t.Fatalf("GetByUserAndName() error = %v", err)
	}
	if cat != nil {
		t.Fatalf("GetByUserAndName() = %+v, want nil", cat)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCategoryInsertSerializesMembership(t *testing.T) {
	repo, mock, done := newCategoryRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	cat := &domain.Category{
		ID:          "cat-1",
		UserID:      "user-1",
		Name:        "Tech",
		DocumentIDs: []string{"doc-1"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	mock.ExpectExec("INSERT INTO categories").
		WithArgs("cat-1", "user-1", "Tech", "", `["doc-1"]`, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Insert(context.Background(), cat); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCategoryScanDecodesMembership(t *testing.T) {
	repo, mock, done := newCategoryRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, user_id, name").
		WithArgs("cat-1", "user-1").
		WillReturnRows(categoryRow(domain.Category{
			ID: "cat-1", UserID: "user-1", Name: "Tech", CreatedAt: now, UpdatedAt: now,
		}, `["doc-1","doc-2"]`))

	cat, err := repo.GetOwned(context.Background(), "cat-1", "user-1")
	if err != nil {
		t.Fatalf("GetOwned() error = %v", err)
	}
	if cat == nil || len(cat.DocumentIDs) != 2 || cat.DocumentIDs[0] != "doc-1" {
		t.Fatalf("GetOwned() = %+v, want membership [doc-1 doc-2]", cat)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCategoryAddDocumentIDsDeduplicatesInputAndBindsJSON(t *testing.T) {
	repo, mock, done := newCategoryRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	mock.ExpectQuery("UPDATE categories").
		WithArgs("cat-1", "user-1", `["doc-1","doc-2"]`, sqlmock.AnyArg()).
		WillReturnRows(categoryRow(domain.Category{
			ID: "cat-1", UserID: "user-1", Name: "Tech", CreatedAt: now, UpdatedAt: now,
		}, `["doc-1","doc-2"]`))

	cat, err := repo.AddDocumentIDs(context.Background(), "cat-1", "user-1", []string{"doc-1", "doc-2", "doc-1"})
	if err != nil {
		t.Fatalf("AddDocumentIDs() error = %v", err)
	}
	if cat == nil || len(cat.DocumentIDs) != 2 {
		t.Fatalf("AddDocumentIDs() = %+v, want 2 members", cat)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCategoryRemoveDocumentIDsReturnsNilWhenNotOwned(t *testing.T) {
	repo, mock, done := newCategoryRepoWithMock(t)
	defer done()

	mock.ExpectQuery("UPDATE categories").
		WithArgs("cat-1", "user-2", `["doc-1"]`, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	cat, err := repo.RemoveDocumentIDs(context.Background(), "cat-1", "user-2", []string{"doc-1"})
	if err != nil {
		t.Fatalf("RemoveDocumentIDs() error = %v", err)
	}
	if cat != nil {
		t.Fatalf("RemoveDocumentIDs() = %+v, want nil for foreign owner", cat)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCategoryUpdateFieldsBindsNilForUntouchedColumns(t *testing.T) {
	repo, mock, done := newCategoryRepoWithMock(t)
	defer done()

	now := time.Now().UTC()
	name := "Technology"
	mock.ExpectQuery("UPDATE categories").
		WithArgs("cat-1", "user-1", &name, (*string)(nil), sqlmock.AnyArg()).
		WillReturnRows(categoryRow(domain.Category{
			ID: "cat-1", UserID: "user-1", Name: "Technology", CreatedAt: now, UpdatedAt: now,
		}, `[]`))

	cat, err := repo.UpdateFields(context.Background(), "cat-1", "user-1", &name, nil)
	if err != nil {
		t.Fatalf("UpdateFields() error = %v", err)
	}
	if cat == nil || cat.Name != "Technology" {
		t.Fatalf("UpdateFields() = %+v, want renamed category", cat)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCategoryDeleteScopesToOwner(t *testing.T) {
	repo, mock, done := newCategoryRepoWithMock(t)
	defer done()

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("cat-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), "cat-1", "user-2")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok {
		t.Fatalf("Delete() = true for foreign owner, want false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
