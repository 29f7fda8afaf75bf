package domain

type Language string

const (
	LanguageFrench Language = "fr"
	LanguageArabic Language = "ar"
)

// Supported reports whether l is one of the two corpus languages.
func (l Language) Supported() bool {
	return l == LanguageFrench || l == LanguageArabic
}

// Direction returns the text direction for UI consumers.
func (l Language) Direction() string {
	if l == LanguageArabic {
		return "rtl"
	}
	return "ltr"
}

type SourceCategory string

const (
	CategoryStructuredLegal   SourceCategory = "structured_legal"
	CategoryBusinessKnowledge SourceCategory = "business_knowledge"
	CategoryMiscellaneous     SourceCategory = "miscellaneous"

	// Topic categories carried by business-knowledge entries whose leading
	// text matches a known keyword set.
	CategoryFiscal           SourceCategory = "fiscal"
	CategoryBusinessCreation SourceCategory = "business_creation"
	CategoryLegal            SourceCategory = "legal"
	CategoryLabor            SourceCategory = "labor"
)

// Document is the unit of retrieval. One source record can yield up to two
// documents, one per language, each with its own ID suffix.
type Document struct {
	ID             string         `json:"id"`
	Language       Language       `json:"language"`
	SourceCategory SourceCategory `json:"source_category"`

	Code            string `json:"code,omitempty"`
	EntityType      string `json:"type_entreprise,omitempty"`
	EntityGenre     string `json:"genre_entreprise,omitempty"`
	Procedure       string `json:"procedure,omitempty"`
	Fees            string `json:"redevance_demandee,omitempty"`
	ProcessingDelay string `json:"delais,omitempty"`

	Content      string         `json:"content"`
	RawContent   map[string]any `json:"raw_content,omitempty"`
	ExternalLink string         `json:"pdf_link,omitempty"`
}
