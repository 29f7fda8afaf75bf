package usecase

import (
	"regexp"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

// Legal article identifiers look like "RNE C 101.02".
var rneCodePattern = regexp.MustCompile(`RNE\s+[A-Z]\s+\d+\.\d+`)

// buildReferences collects citable sources from the retrieved documents.
// Only documents carrying a legal code are citable; duplicates by code are
// dropped so a document retrieved by both modalities appears once.
func buildReferences(results []domain.RetrievalResult) []domain.Reference {
	seen := make(map[string]struct{}, len(results))
	var refs []domain.Reference
	for _, r := range results {
		code := r.Document.Code
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		refs = append(refs, domain.Reference{
			Code:      code,
			Procedure: r.Document.Procedure,
			Score:     r.Score,
			PDFLink:   r.Document.ExternalLink,
		})
	}
	return refs
}

// citedReferences keeps only the retrieved sources whose code the answer
// text actually cites. An answer that cites nothing gets no references,
// whatever was retrieved.
func citedReferences(answer string, results []domain.RetrievalResult) []domain.Reference {
	cited := extractCitedCodes(answer)
	if len(cited) == 0 {
		return nil
	}
	citedSet := make(map[string]struct{}, len(cited))
	for _, code := range cited {
		citedSet[code] = struct{}{}
	}

	var refs []domain.Reference
	for _, ref := range buildReferences(results) {
		if _, ok := citedSet[ref.Code]; ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// extractCitedCodes returns the legal codes an answer text actually cites,
// in order of first appearance.
func extractCitedCodes(answer string) []string {
	matches := rneCodePattern.FindAllString(answer, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var codes []string
	for _, m := range matches {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		codes = append(codes, m)
	}
	return codes
}
