package ingest

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

// Raw record field names as they appear in the source JSON exports.
const (
	fieldCombinedFR = "combined_content_french"
	fieldCombinedAR = "combined_content_arabic"
	fieldCode       = "code"
	fieldContentFR  = "french_content"
	fieldContentAR  = "arabic_content"
)

// Topic keyword sets scanned against the head of combined-content entries.
var topicKeywords = []struct {
	category domain.SourceCategory
	keywords []string
}{
	{domain.CategoryFiscal, []string{"impôt", "taxe", "fiscal", "tva", "redevance"}},
	{domain.CategoryBusinessCreation, []string{"création", "immatriculation", "entreprise", "société"}},
	{domain.CategoryLegal, []string{"loi", "décret", "article", "juridique"}},
	{domain.CategoryLabor, []string{"travail", "employé", "salarié", "contrat"}},
}

const topicScanLen = 100

// Normalizer converts heterogeneous raw records into uniform documents.
// One bad record never aborts the batch: it is logged and skipped.
type Normalizer struct {
	logger *slog.Logger
}

func NewNormalizer(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Stats reports what a normalization pass did with its input.
type Stats struct {
	Records      int
	Documents    int
	Skipped      int
	DroppedEmpty int
}

// Normalize dispatches each record down one of three paths: combined-content
// business knowledge, structured legal codes with bilingual sub-objects, or
// best-effort extraction for anything else.
func (n *Normalizer) Normalize(records []map[string]any) ([]domain.Document, Stats) {
	stats := Stats{Records: len(records)}
	var docs []domain.Document

	for i, record := range records {
		emitted, err := n.normalizeRecord(i, record)
		if err != nil {
			stats.Skipped++
			n.logger.Warn("skipping malformed record", "index", i, "error", err)
			continue
		}
		for _, doc := range emitted {
			if strings.TrimSpace(doc.Content) == "" {
				stats.DroppedEmpty++
				n.logger.Warn("dropping document with empty content", "id", doc.ID)
				continue
			}
			docs = append(docs, doc)
		}
	}

	stats.Documents = len(docs)
	return docs, stats
}

func (n *Normalizer) normalizeRecord(index int, record map[string]any) ([]domain.Document, error) {
	if record == nil {
		return nil, fmt.Errorf("nil record")
	}

	if hasText(record, fieldCombinedFR) || hasText(record, fieldCombinedAR) {
		doc, err := n.normalizeCombined(index, record)
		if err != nil {
			return nil, err
		}
		return []domain.Document{doc}, nil
	}

	if hasText(record, fieldCode) {
		return n.normalizeLegal(record)
	}

	return []domain.Document{n.normalizeLoose(index, record)}, nil
}

// normalizeCombined emits one document per record. French wins when both
// variants are present.
func (n *Normalizer) normalizeCombined(index int, record map[string]any) (domain.Document, error) {
	language := domain.LanguageFrench
	content := stringField(record, fieldCombinedFR)
	if content == "" {
		language = domain.LanguageArabic
		content = stringField(record, fieldCombinedAR)
	}

	return domain.Document{
		ID:             fmt.Sprintf("combined-%d_%s", index, language),
		Language:       language,
		SourceCategory: classifyTopic(content),
		Content:        content,
		RawContent:     record,
		ExternalLink:   stringField(record, "pdf_link"),
	}, nil
}

// normalizeLegal emits up to two documents, one per language sub-object.
func (n *Normalizer) normalizeLegal(record map[string]any) ([]domain.Document, error) {
	code := stringField(record, fieldCode)

	base := domain.Document{
		SourceCategory:  domain.CategoryStructuredLegal,
		Code:            code,
		EntityType:      stringField(record, "type_entreprise"),
		EntityGenre:     stringField(record, "genre_entreprise"),
		Procedure:       stringField(record, "procedure"),
		Fees:            stringField(record, "redevance_demandee"),
		ProcessingDelay: stringField(record, "delais"),
	}

	var docs []domain.Document
	if sub, ok := record[fieldContentFR].(map[string]any); ok && len(sub) > 0 {
		doc := base
		doc.ID = code + "_fr"
		doc.Language = domain.LanguageFrench
		doc.Content = flattenContent(sub)
		doc.RawContent = sub
		doc.ExternalLink = stringField(record, "pdf_french_link")
		docs = append(docs, doc)
	}
	if sub, ok := record[fieldContentAR].(map[string]any); ok && len(sub) > 0 {
		doc := base
		doc.ID = code + "_ar"
		doc.Language = domain.LanguageArabic
		doc.Content = flattenContent(sub)
		doc.RawContent = sub
		doc.ExternalLink = stringField(record, "pdf_arabic_link")
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("legal record %s has no content in either language", code)
	}
	return docs, nil
}

// normalizeLoose extracts whatever text the record carries.
func (n *Normalizer) normalizeLoose(index int, record map[string]any) domain.Document {
	return domain.Document{
		ID:             fmt.Sprintf("misc-%d_fr", index),
		Language:       domain.LanguageFrench,
		SourceCategory: domain.CategoryMiscellaneous,
		Content:        flattenContent(record),
		RawContent:     record,
	}
}

// flattenContent renders a mapping as "key: value" lines in stable key
// order, joining list values with spaces.
func flattenContent(content map[string]any) string {
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		switch v := content[k].(type) {
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			fmt.Fprintf(&b, "%s: %s\n", k, strings.Join(parts, " "))
		case map[string]any:
			fmt.Fprintf(&b, "%s: %s\n", k, strings.TrimSpace(flattenContent(v)))
		default:
			fmt.Fprintf(&b, "%s: %v\n", k, v)
		}
	}
	return b.String()
}

// classifyTopic scans the head of the content for a known topic; the first
// listed topic with a match wins.
func classifyTopic(content string) domain.SourceCategory {
	head := strings.ToLower(content)
	if runes := []rune(head); len(runes) > topicScanLen {
		head = string(runes[:topicScanLen])
	}
	for _, topic := range topicKeywords {
		for _, kw := range topic.keywords {
			if strings.Contains(head, kw) {
				return topic.category
			}
		}
	}
	return domain.CategoryBusinessKnowledge
}

func hasText(record map[string]any, key string) bool {
	return stringField(record, key) != ""
}

func stringField(record map[string]any, key string) string {
	if v, ok := record[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
