package domain

// RetrievalResult pairs a document with an index-local score before fusion
// and a fusion-combined score after. Rank is the 1-based position within the
// list the result was last produced in. Never persisted.
type RetrievalResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
	Rank     int      `json:"rank"`
}

// Reference points at a source document cited by a generated answer.
type Reference struct {
	Code      string  `json:"code"`
	Procedure string  `json:"procedure,omitempty"`
	Score     float64 `json:"score"`
	PDFLink   string  `json:"pdf_link,omitempty"`
}
