package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*CorpusRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &CorpusRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, language, source_category").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDScansRawContent(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"id", "language", "source_category", "code", "entity_type", "entity_genre",
		"procedure", "fees", "processing_delay", "content", "raw_content", "external_link",
	}).AddRow(
		"doc-1_fr", "fr", "structured_legal", "RNE C 101.02", "SARL", "Commerciale",
		"Immatriculation", "50 DT", "48h", "texte", []byte(`{"french_content":"valeur"}`), "https://example.tn/doc.pdf",
	)

	mock.ExpectQuery("SELECT id, language, source_category").
		WithArgs("doc-1_fr").
		WillReturnRows(rows)

	doc, err := repo.GetByID(context.Background(), "doc-1_fr")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if doc.Language != domain.LanguageFrench || doc.Code != "RNE C 101.02" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.RawContent["french_content"] != "valeur" {
		t.Fatalf("raw content not decoded: %+v", doc.RawContent)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceAllIsTransactional(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM corpus_documents").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO corpus_documents").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	docs := []domain.Document{{
		ID:             "doc-1_fr",
		Language:       domain.LanguageFrench,
		SourceCategory: domain.CategoryStructuredLegal,
		Content:        "texte",
	}}
	if err := repo.ReplaceAll(context.Background(), docs); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceAllRollsBackOnInsertFailure(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM corpus_documents").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO corpus_documents").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ReplaceAll(context.Background(), []domain.Document{{ID: "doc-1_fr"}})
	if err == nil {
		t.Fatalf("expected insert failure to surface")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCountByLanguage(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"language", "count"}).
		AddRow("fr", 120).
		AddRow("ar", 95)
	mock.ExpectQuery("SELECT language, COUNT").WillReturnRows(rows)

	counts, err := repo.CountByLanguage(context.Background())
	if err != nil {
		t.Fatalf("CountByLanguage() error = %v", err)
	}
	if counts[domain.LanguageFrench] != 120 || counts[domain.LanguageArabic] != 95 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
