package domain

// ConversationContext travels with one request/response round-trip. The
// server keeps no session state; the caller echoes the context back on the
// follow-up request.
type ConversationContext struct {
	OriginalQuery         string `json:"original_query,omitempty"`
	AwaitingClarification bool   `json:"awaiting_clarification"`
}

type ResponseKind string

const (
	ResponseDirect     ResponseKind = "direct_answer"
	ResponseClarifying ResponseKind = "clarification_needed"
	ResponseSegmented  ResponseKind = "segmented_answer"
	ResponseError      ResponseKind = "error"
)

// DirectAnswer is a single generated answer with its citations.
type DirectAnswer struct {
	Text           string      `json:"response"`
	References     []Reference `json:"references,omitempty"`
	DocumentsFound int         `json:"documents_found"`
}

// Clarification asks the user to pick one of several options before the
// question can be answered.
type Clarification struct {
	Category         string   `json:"category"`
	MainResponse     string   `json:"main_response"`
	FollowUpQuestion string   `json:"follow_up_question"`
	Options          []string `json:"options"`
}

// SegmentedAnswer is one sub-question's answer within a multi-part response.
type SegmentedAnswer struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	DocumentsFound int    `json:"documents_found"`
}

// RouteResponse is the tagged outcome of routing one user message. Exactly
// one of the payload fields matching Kind is set.
type RouteResponse struct {
	Kind      ResponseKind        `json:"type"`
	Language  Language            `json:"language"`
	Direct    *DirectAnswer       `json:"direct,omitempty"`
	Clarify   *Clarification      `json:"clarification,omitempty"`
	Segments  []SegmentedAnswer   `json:"segments,omitempty"`
	Combined  string              `json:"combined,omitempty"`
	ErrorText string              `json:"error_text,omitempty"`
	Context   ConversationContext `json:"context"`

	// Degraded marks an answer produced from a fallback template after a
	// collaborator failure, so callers can distinguish "answered, but
	// degraded" from "answered".
	Degraded bool `json:"degraded,omitempty"`
}
