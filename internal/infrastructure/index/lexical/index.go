// Package lexical implements the sparse retrieval modality: one BM25
// sub-index per supported language. Vocabulary and document-frequency
// statistics are language-specific, so the partitions never mix; a query
// only ever scores against the partition matching its resolved language.
package lexical

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/core/ports"
)

const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// Index routes documents into per-language partitions at build time and
// scores queries with BM25 (Okapi variant) against a single partition.
type Index struct {
	preparer ports.TextPreparer
	detector ports.LanguageDetector

	mu         sync.RWMutex
	partitions map[domain.Language]*partition
}

// partition holds the BM25 model for one language. A language with no
// documents has no partition at all.
type partition struct {
	Documents []domain.Document `json:"documents"`
	TermFreqs []map[string]int  `json:"term_freqs"`
	DocLens   []int             `json:"doc_lens"`
	DocFreq   map[string]int    `json:"doc_freq"`
	AvgDocLen float64           `json:"avg_doc_len"`
}

func New(preparer ports.TextPreparer, detector ports.LanguageDetector) *Index {
	return &Index{
		preparer:   preparer,
		detector:   detector,
		partitions: make(map[domain.Language]*partition),
	}
}

// Build partitions (text, document) pairs by document language and builds an
// independent BM25 model per partition. Pairs whose language is unsupported
// are ignored; an all-empty corpus yields an index that returns no results.
func (idx *Index) Build(texts []string, docs []domain.Document) {
	partitions := make(map[domain.Language]*partition)

	for i, doc := range docs {
		if i >= len(texts) || !doc.Language.Supported() {
			continue
		}
		part, ok := partitions[doc.Language]
		if !ok {
			part = &partition{DocFreq: make(map[string]int)}
			partitions[doc.Language] = part
		}

		tokens := idx.preparer.Prepare(texts[i], doc.Language)
		tf := make(map[string]int, len(tokens))
		for _, token := range tokens {
			tf[token]++
		}
		for term := range tf {
			part.DocFreq[term]++
		}
		part.Documents = append(part.Documents, doc)
		part.TermFreqs = append(part.TermFreqs, tf)
		part.DocLens = append(part.DocLens, len(tokens))
	}

	for _, part := range partitions {
		var total int
		for _, l := range part.DocLens {
			total += l
		}
		if n := len(part.DocLens); n > 0 {
			part.AvgDocLen = float64(total) / float64(n)
		}
	}

	idx.mu.Lock()
	idx.partitions = partitions
	idx.mu.Unlock()
}

// Search tokenizes the query under the resolved language and returns the top
// topK documents by descending BM25 score. Documents with a non-positive
// score are not matches and are excluded. A missing partition returns an
// empty result set.
func (idx *Index) Search(query string, topK int, language domain.Language) []domain.RetrievalResult {
	if topK <= 0 {
		topK = 3
	}
	if language == "" {
		language = idx.detector.Detect(query)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	part, ok := idx.partitions[language]
	if !ok || len(part.Documents) == 0 {
		return nil
	}

	queryTokens := idx.preparer.Prepare(query, language)
	if len(queryTokens) == 0 {
		return nil
	}

	n := len(part.Documents)
	scores := make([]float64, n)
	for _, term := range queryTokens {
		df, ok := part.DocFreq[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + (float64(n)-float64(df)+0.5)/(float64(df)+0.5))
		for i := 0; i < n; i++ {
			tf := float64(part.TermFreqs[i][term])
			if tf == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(part.DocLens[i])/part.AvgDocLen
			scores[i] += idf * tf * (bm25K1 + 1) / (tf + bm25K1*norm)
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	results := make([]domain.RetrievalResult, 0, topK)
	for _, i := range order {
		if scores[i] <= 0 {
			break
		}
		results = append(results, domain.RetrievalResult{
			Document: part.Documents[i],
			Score:    scores[i],
			Rank:     len(results) + 1,
		})
		if len(results) >= topK {
			break
		}
	}
	return results
}

type snapshotState struct {
	Partitions map[domain.Language]*partition `json:"partitions"`
}

func (idx *Index) Snapshot() ([]byte, error) {
	idx.mu.RLock()
	state := snapshotState{Partitions: idx.partitions}
	idx.mu.RUnlock()

	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode lexical snapshot: %w", err)
	}
	return data, nil
}

func (idx *Index) Restore(data []byte) error {
	var state snapshotState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decode lexical snapshot: %w", err)
	}
	if state.Partitions == nil {
		state.Partitions = make(map[domain.Language]*partition)
	}

	idx.mu.Lock()
	idx.partitions = state.Partitions
	idx.mu.Unlock()
	return nil
}

// Size reports the number of documents per language partition.
func (idx *Index) Size() map[domain.Language]int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[domain.Language]int, len(idx.partitions))
	for lang, part := range idx.partitions {
		out[lang] = len(part.Documents)
	}
	return out
}
