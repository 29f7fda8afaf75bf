package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

// CorpusRepository persists the normalized corpus. The table is the system
// of record for citation lookup; the indices are rebuilt from it.
type CorpusRepository struct {
	db *sql.DB
}

func NewCorpusRepository(db *sql.DB) *CorpusRepository {
	return &CorpusRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *CorpusRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/indexer startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS corpus_documents (
	id TEXT PRIMARY KEY,
	language TEXT NOT NULL,
	source_category TEXT NOT NULL,
	code TEXT,
	entity_type TEXT,
	entity_genre TEXT,
	procedure TEXT,
	fees TEXT,
	processing_delay TEXT,
	content TEXT NOT NULL,
	raw_content JSONB NOT NULL DEFAULT '{}'::jsonb,
	external_link TEXT,
	indexed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_corpus_documents_language ON corpus_documents(language);
CREATE INDEX IF NOT EXISTS idx_corpus_documents_code ON corpus_documents(code);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole corpus in one transaction so readers never see
// a partially rebuilt table.
func (r *CorpusRepository) ReplaceAll(ctx context.Context, docs []domain.Document) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM corpus_documents`); err != nil {
		return fmt.Errorf("clear corpus: %w", err)
	}

	now := time.Now().UTC()
	for _, doc := range docs {
		rawJSON, err := json.Marshal(doc.RawContent)
		if err != nil {
			return fmt.Errorf("marshal raw content for %s: %w", doc.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO corpus_documents (
	id, language, source_category, code, entity_type, entity_genre, procedure, fees, processing_delay, content, raw_content, external_link, indexed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`,
			doc.ID, string(doc.Language), string(doc.SourceCategory), doc.Code, doc.EntityType, doc.EntityGenre,
			doc.Procedure, doc.Fees, doc.ProcessingDelay, doc.Content, rawJSON, doc.ExternalLink, now,
		)
		if err != nil {
			return fmt.Errorf("insert document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

func (r *CorpusRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, language, source_category, code, entity_type, entity_genre, procedure, fees, processing_delay, content, raw_content, external_link
FROM corpus_documents
WHERE id = $1
`, id)

	var doc domain.Document
	var language, category string
	var rawJSON []byte

	err := row.Scan(
		&doc.ID, &language, &category, &doc.Code, &doc.EntityType, &doc.EntityGenre,
		&doc.Procedure, &doc.Fees, &doc.ProcessingDelay, &doc.Content, &rawJSON, &doc.ExternalLink,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "corpus get", fmt.Errorf("document %s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	if len(rawJSON) > 0 {
		if err := json.Unmarshal(rawJSON, &doc.RawContent); err != nil {
			return nil, fmt.Errorf("unmarshal raw content: %w", err)
		}
	}
	doc.Language = domain.Language(language)
	doc.SourceCategory = domain.SourceCategory(category)
	return &doc, nil
}

func (r *CorpusRepository) CountByLanguage(ctx context.Context) (map[domain.Language]int, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT language, COUNT(*)
FROM corpus_documents
GROUP BY language
`)
	if err != nil {
		return nil, fmt.Errorf("count by language: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Language]int)
	for rows.Next() {
		var language string
		var count int
		if err := rows.Scan(&language, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[domain.Language(language)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}
