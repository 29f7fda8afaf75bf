package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/core/ports"
)

const minInternalFetch = 10

// HybridRetriever merges the dense and sparse modalities into one ranked
// list. The language is resolved once per query and propagated to both
// sub-searches so the two indices always serve the same partition.
type HybridRetriever struct {
	semantic ports.SemanticIndex
	lexical  ports.LexicalIndex
	detector ports.LanguageDetector

	semanticWeight float64
	lexicalWeight  float64
}

func NewHybridRetriever(
	semantic ports.SemanticIndex,
	lexical ports.LexicalIndex,
	detector ports.LanguageDetector,
	semanticWeight, lexicalWeight float64,
) *HybridRetriever {
	if semanticWeight <= 0 && lexicalWeight <= 0 {
		semanticWeight, lexicalWeight = 0.5, 0.5
	}
	return &HybridRetriever{
		semantic:       semantic,
		lexical:        lexical,
		detector:       detector,
		semanticWeight: semanticWeight,
		lexicalWeight:  lexicalWeight,
	}
}

// Search is the single retrieval entry point used by the conversation
// router. Both indices returning empty yields an empty fused list; that is
// the defined no-results outcome, not an error.
func (h *HybridRetriever) Search(ctx context.Context, query string, topK int, language domain.Language) ([]domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = 3
	}
	if language == "" {
		language = h.detector.Detect(query)
	}

	// Over-fetch so the fusion step has enough candidates to rerank without
	// starving either modality.
	fetch := topK * 2
	if fetch < minInternalFetch {
		fetch = minInternalFetch
	}

	semanticResults, err := h.semantic.Search(ctx, query, fetch, language)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	lexicalResults := h.lexical.Search(query, fetch, language)

	return h.fuse(semanticResults, lexicalResults, topK), nil
}

type fusedCandidate struct {
	document      domain.Document
	semanticScore float64
	lexicalScore  float64
}

func (h *HybridRetriever) fuse(semanticResults, lexicalResults []domain.RetrievalResult, topK int) []domain.RetrievalResult {
	semanticScores := minMaxNormalize(semanticResults)
	lexicalScores := minMaxNormalize(lexicalResults)

	// Merge by document identity, keeping discovery order: ties in the
	// combined score resolve to whichever document appeared first.
	order := make([]string, 0, len(semanticResults)+len(lexicalResults))
	byID := make(map[string]*fusedCandidate, len(semanticResults)+len(lexicalResults))

	for i, r := range semanticResults {
		id := r.Document.ID
		if _, ok := byID[id]; !ok {
			byID[id] = &fusedCandidate{document: r.Document}
			order = append(order, id)
		}
		byID[id].semanticScore = semanticScores[i] * h.semanticWeight
	}
	for i, r := range lexicalResults {
		id := r.Document.ID
		if _, ok := byID[id]; !ok {
			byID[id] = &fusedCandidate{document: r.Document}
			order = append(order, id)
		}
		byID[id].lexicalScore = lexicalScores[i] * h.lexicalWeight
	}

	fused := make([]domain.RetrievalResult, 0, len(order))
	for _, id := range order {
		c := byID[id]
		fused = append(fused, domain.RetrievalResult{
			Document: c.document,
			Score:    c.semanticScore + c.lexicalScore,
		})
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})

	if len(fused) > topK {
		fused = fused[:topK]
	}
	for i := range fused {
		fused[i].Rank = i + 1
	}
	return fused
}

// minMaxNormalize maps one index's scores into [0, 1] for this query. A
// degenerate all-equal set is left unchanged to avoid dividing by zero.
func minMaxNormalize(results []domain.RetrievalResult) []float64 {
	out := make([]float64, len(results))
	if len(results) == 0 {
		return out
	}

	minScore, maxScore := results[0].Score, results[0].Score
	for _, r := range results[1:] {
		if r.Score < minScore {
			minScore = r.Score
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	for i, r := range results {
		if maxScore == minScore {
			out[i] = r.Score
			continue
		}
		out[i] = (r.Score - minScore) / (maxScore - minScore)
	}
	return out
}
