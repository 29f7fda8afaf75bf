package ingest

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

func newNormalizer() *Normalizer {
	return NewNormalizer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNormalizeLegalRecordEmitsBothLanguages(t *testing.T) {
	records := []map[string]any{{
		"code":               "RNE C 101.02",
		"type_entreprise":    "SARL",
		"genre_entreprise":   "Commerciale",
		"procedure":          "Immatriculation",
		"redevance_demandee": "50 DT",
		"delais":             "48h",
		"pdf_french_link":    "https://example.tn/fr.pdf",
		"pdf_arabic_link":    "https://example.tn/ar.pdf",
		"french_content": map[string]any{
			"conditions": []any{"statuts signés", "pièce d'identité"},
			"objet":      "constitution",
		},
		"arabic_content": map[string]any{
			"الشروط": "نسخة من بطاقة التعريف",
		},
	}}

	docs, stats := newNormalizer().Normalize(records)
	if stats.Documents != 2 || stats.Skipped != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	fr, ar := docs[0], docs[1]
	if fr.ID != "RNE C 101.02_fr" || fr.Language != domain.LanguageFrench {
		t.Fatalf("unexpected french doc: %+v", fr)
	}
	if fr.SourceCategory != domain.CategoryStructuredLegal {
		t.Fatalf("legal path must tag structured_legal, got %s", fr.SourceCategory)
	}
	if !strings.Contains(fr.Content, "conditions: statuts signés pièce d'identité\n") {
		t.Fatalf("list values must join with spaces as key: value lines, got %q", fr.Content)
	}
	if fr.ExternalLink != "https://example.tn/fr.pdf" || ar.ExternalLink != "https://example.tn/ar.pdf" {
		t.Fatal("per-language pdf links not assigned")
	}
	if ar.ID != "RNE C 101.02_ar" || ar.Language != domain.LanguageArabic {
		t.Fatalf("unexpected arabic doc: %+v", ar)
	}
}

func TestNormalizeLegalRecordSingleLanguage(t *testing.T) {
	records := []map[string]any{{
		"code": "RNE M 004.37",
		"french_content": map[string]any{
			"objet": "dépôt des états financiers",
		},
	}}

	docs, stats := newNormalizer().Normalize(records)
	if stats.Documents != 1 {
		t.Fatalf("expected one document, got %+v", stats)
	}
	if docs[0].Language != domain.LanguageFrench {
		t.Fatalf("unexpected language %s", docs[0].Language)
	}
}

func TestNormalizeCombinedContent(t *testing.T) {
	records := []map[string]any{
		{"combined_content_french": "La création d'une entreprise commence par l'immatriculation au registre."},
		{"combined_content_arabic": "معلومات عامة على السجل الوطني للمؤسسات"},
		{"combined_content_french": "Texte général sans mots connus."},
	}

	docs, stats := newNormalizer().Normalize(records)
	if stats.Documents != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if docs[0].SourceCategory != domain.CategoryBusinessCreation {
		t.Fatalf("expected business_creation topic, got %s", docs[0].SourceCategory)
	}
	if docs[0].Language != domain.LanguageFrench || docs[1].Language != domain.LanguageArabic {
		t.Fatal("combined-content language must follow the present variant")
	}
	if docs[2].SourceCategory != domain.CategoryBusinessKnowledge {
		t.Fatalf("unmatched topic must default to business_knowledge, got %s", docs[2].SourceCategory)
	}
}

func TestNormalizeLooseRecord(t *testing.T) {
	records := []map[string]any{{
		"question": "Comment contacter le RNE ?",
		"réponse":  "Par le portail en ligne.",
	}}

	docs, stats := newNormalizer().Normalize(records)
	if stats.Documents != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	doc := docs[0]
	if doc.SourceCategory != domain.CategoryMiscellaneous || doc.Language != domain.LanguageFrench {
		t.Fatalf("unexpected loose doc: %+v", doc)
	}
	if !strings.Contains(doc.Content, "question: Comment contacter le RNE ?\n") {
		t.Fatalf("loose record not flattened: %q", doc.Content)
	}
}

func TestNormalizeSkipsBadRecordsAndDropsEmpty(t *testing.T) {
	records := []map[string]any{
		nil,
		{"code": "RNE X 1.1"},
		{"combined_content_french": "La société doit déposer ses statuts."},
		{},
	}

	docs, stats := newNormalizer().Normalize(records)
	if stats.Skipped != 2 {
		t.Fatalf("expected 2 skipped records, got %+v", stats)
	}
	if stats.DroppedEmpty != 1 {
		t.Fatalf("expected 1 empty-content drop, got %+v", stats)
	}
	if stats.Documents != 1 || len(docs) != 1 {
		t.Fatalf("expected the one good record to survive, got %+v", stats)
	}
}
