package ports

import (
	"context"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

// LanguageDetector resolves the language of free text. It never fails; when
// detection is inconclusive it falls back to the configured default.
type LanguageDetector interface {
	Detect(text string) domain.Language
}

// TextPreparer normalizes and tokenizes text for lexical indexing. Pure
// function of (text, language).
type TextPreparer interface {
	Prepare(text string, language domain.Language) []string
}

// Embedder builds fixed-dimension vectors for document and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// QuestionSegmenter splits one user message into independent sub-questions.
// The result always has at least one element; callers degrade a failure to
// treating the whole input as a single question.
type QuestionSegmenter interface {
	Segment(ctx context.Context, text string) ([]string, error)
}

// AnswerGenerator produces the final user-facing answer from retrieved
// context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, query string, results []domain.RetrievalResult, language domain.Language) (string, error)
}

// SemanticIndex is the dense retrieval modality.
type SemanticIndex interface {
	Build(ctx context.Context, texts []string, docs []domain.Document) error
	Search(ctx context.Context, query string, topK int, language domain.Language) ([]domain.RetrievalResult, error)
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// LexicalIndex is the sparse retrieval modality, partitioned by language.
type LexicalIndex interface {
	Build(texts []string, docs []domain.Document)
	Search(query string, topK int, language domain.Language) []domain.RetrievalResult
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// SnapshotStore persists opaque index state. Load reports absence as
// ok=false, not as an error.
type SnapshotStore interface {
	Save(name string, data []byte) error
	Load(name string) (data []byte, ok bool, err error)
}

// IndexEventBus announces out-of-band index rebuilds so serving processes
// can reload snapshots and swap atomically.
type IndexEventBus interface {
	PublishIndexRebuilt(ctx context.Context, version string) error
	SubscribeIndexRebuilt(ctx context.Context, handler func(context.Context, string) error) error
}

// CorpusRepository persists normalized documents for provenance and
// citation lookup.
type CorpusRepository interface {
	ReplaceAll(ctx context.Context, docs []domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	CountByLanguage(ctx context.Context) (map[domain.Language]int, error)
}
