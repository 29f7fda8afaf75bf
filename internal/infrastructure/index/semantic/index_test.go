package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

// embedderFake maps known strings to fixed 3-dimensional vectors.
type embedderFake struct {
	vectors map[string][]float32
	err     error
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			v = []float32{0, 0, 1}
		}
		vc := make([]float32, len(v))
		copy(vc, v)
		out = append(out, vc)
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	fake := &embedderFake{vectors: map[string][]float32{
		"capital sarl":    {1, 0, 0},
		"delais creation": {0, 1, 0},
		"query capital":   {0.9, 0.1, 0},
	}}
	idx := New(fake, 3)
	err := idx.Build(context.Background(), []string{"capital sarl", "delais creation"}, []domain.Document{
		{ID: "a_fr", Language: domain.LanguageFrench},
		{ID: "b_ar", Language: domain.LanguageArabic},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return idx
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "query capital", 2, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Document.ID != "a_fr" {
		t.Fatalf("expected a_fr first, got %s", results[0].Document.ID)
	}
	if results[0].Score <= results[1].Score {
		t.Fatalf("expected descending scores, got %f then %f", results[0].Score, results[1].Score)
	}
	if results[0].Rank != 1 || results[1].Rank != 2 {
		t.Fatalf("ranks not 1-based sequential: %d, %d", results[0].Rank, results[1].Rank)
	}
}

func TestSearchFiltersByLanguage(t *testing.T) {
	idx := newTestIndex(t)
	results, err := idx.Search(context.Background(), "query capital", 2, domain.LanguageArabic)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, r := range results {
		if r.Document.Language != domain.LanguageArabic {
			t.Fatalf("language filter leaked %s document %s", r.Document.Language, r.Document.ID)
		}
	}
}

func TestSearchEmptyIndexReturnsEmpty(t *testing.T) {
	idx := New(&embedderFake{}, 3)
	results, err := idx.Search(context.Background(), "anything", 5, "")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %d", len(results))
	}
}

func TestBuildZeroDocuments(t *testing.T) {
	idx := New(&embedderFake{}, 3)
	if err := idx.Build(context.Background(), nil, nil); err != nil {
		t.Fatalf("Build() with empty corpus error = %v", err)
	}
	if idx.Size() != 0 {
		t.Fatalf("expected empty index, got size %d", idx.Size())
	}
}

func TestBuildLengthMismatch(t *testing.T) {
	idx := New(&embedderFake{}, 3)
	err := idx.Build(context.Background(), []string{"one"}, nil)
	if err == nil {
		t.Fatalf("expected error for texts/documents mismatch")
	}
}

func TestBuildEmbedderFailure(t *testing.T) {
	idx := New(&embedderFake{err: errors.New("embed down")}, 3)
	err := idx.Build(context.Background(), []string{"one"}, []domain.Document{{ID: "a"}})
	if err == nil {
		t.Fatalf("expected error from embedder")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	idx := newTestIndex(t)
	data, err := idx.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	restored := New(&embedderFake{vectors: map[string][]float32{
		"query capital": {0.9, 0.1, 0},
	}}, 3)
	if err := restored.Restore(data); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored.Size() != idx.Size() {
		t.Fatalf("restored size %d, want %d", restored.Size(), idx.Size())
	}

	results, err := restored.Search(context.Background(), "query capital", 1, "")
	if err != nil {
		t.Fatalf("Search() after restore error = %v", err)
	}
	if len(results) != 1 || results[0].Document.ID != "a_fr" {
		t.Fatalf("restored index search mismatch: %+v", results)
	}
}

func TestSearchDeterministic(t *testing.T) {
	idx := newTestIndex(t)
	a, _ := idx.Search(context.Background(), "query capital", 2, "")
	b, _ := idx.Search(context.Background(), "query capital", 2, "")
	if len(a) != len(b) {
		t.Fatalf("result lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Document.ID != b[i].Document.ID || a[i].Score != b[i].Score {
			t.Fatalf("results differ at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}
