package ingest

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/core/ports"
)

// PDFRecords extracts the plain text of a PDF and wraps it as one
// combined-content record, using the detector to decide which language
// variant the text belongs to.
func PDFRecords(path string, detector ports.LanguageDetector) ([]map[string]any, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	content, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	if _, err := buf.ReadFrom(content); err != nil {
		return nil, fmt.Errorf("read pdf text: %w", err)
	}

	text := buf.String()
	field := fieldCombinedFR
	if detector.Detect(text) == domain.LanguageArabic {
		field = fieldCombinedAR
	}
	return []map[string]any{{
		field:    text,
		"source": path,
	}}, nil
}
