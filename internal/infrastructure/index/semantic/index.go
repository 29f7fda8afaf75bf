// Package semantic implements the dense retrieval modality: a flat
// inner-product index over L2-normalized embedding vectors.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/core/ports"
)

// Index stores one vector per document and scores queries by inner product,
// which equals cosine similarity once both sides are normalized. Built once,
// read-many afterwards; Search never mutates.
type Index struct {
	embedder  ports.Embedder
	dimension int

	mu        sync.RWMutex
	vectors   [][]float32
	documents []domain.Document
}

func New(embedder ports.Embedder, dimension int) *Index {
	if dimension <= 0 {
		dimension = 768
	}
	return &Index{
		embedder:  embedder,
		dimension: dimension,
	}
}

// Build replaces the index contents. texts and docs are parallel slices; an
// empty corpus yields a valid empty index.
func (idx *Index) Build(ctx context.Context, texts []string, docs []domain.Document) error {
	if len(texts) != len(docs) {
		return fmt.Errorf("semantic build: %d texts for %d documents", len(texts), len(docs))
	}
	if len(texts) == 0 {
		idx.mu.Lock()
		idx.vectors = nil
		idx.documents = nil
		idx.mu.Unlock()
		return nil
	}

	vectors, err := idx.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("semantic build: embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}
	for i := range vectors {
		normalizeL2(vectors[i])
	}

	stored := make([]domain.Document, len(docs))
	copy(stored, docs)

	idx.mu.Lock()
	idx.vectors = vectors
	idx.documents = stored
	idx.mu.Unlock()
	return nil
}

// Search embeds the query, over-fetches topK*2 nearest neighbors, filters by
// language when one is given, and truncates to topK. An empty index returns
// an empty result set, never an error.
func (idx *Index) Search(ctx context.Context, query string, topK int, language domain.Language) ([]domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = 3
	}

	if idx.Size() == 0 {
		return nil, nil
	}

	// Embed outside the lock; the blocking external call must not stall a
	// concurrent rebuild.
	queryVector, err := idx.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	normalizeL2(queryVector)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type scored struct {
		position int
		score    float64
	}
	candidates := make([]scored, 0, len(idx.vectors))
	for i, vec := range idx.vectors {
		candidates = append(candidates, scored{position: i, score: dot(queryVector, vec)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	// Over-fetch to leave room for the language filter.
	fetch := topK * 2
	if fetch > len(candidates) {
		fetch = len(candidates)
	}

	results := make([]domain.RetrievalResult, 0, topK)
	for _, c := range candidates[:fetch] {
		doc := idx.documents[c.position]
		if language != "" && doc.Language != language {
			continue
		}
		results = append(results, domain.RetrievalResult{
			Document: doc,
			Score:    c.score,
			Rank:     len(results) + 1,
		})
		if len(results) >= topK {
			break
		}
	}
	return results, nil
}

type snapshotState struct {
	Dimension int               `json:"dimension"`
	Vectors   [][]float32       `json:"vectors"`
	Documents []domain.Document `json:"documents"`
}

// Snapshot serializes the index contents for the snapshot store.
func (idx *Index) Snapshot() ([]byte, error) {
	idx.mu.RLock()
	state := snapshotState{
		Dimension: idx.dimension,
		Vectors:   idx.vectors,
		Documents: idx.documents,
	}
	idx.mu.RUnlock()

	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode semantic snapshot: %w", err)
	}
	return data, nil
}

// Restore replaces the index contents from a prior Snapshot.
func (idx *Index) Restore(data []byte) error {
	var state snapshotState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decode semantic snapshot: %w", err)
	}

	idx.mu.Lock()
	idx.dimension = state.Dimension
	idx.vectors = state.Vectors
	idx.documents = state.Documents
	idx.mu.Unlock()
	return nil
}

// Size reports the number of indexed vectors.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

func normalizeL2(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
