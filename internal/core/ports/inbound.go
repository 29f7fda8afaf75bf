package ports

import (
	"context"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

// ChatRouter is the inbound contract for one conversational turn. It never
// returns an error; failures surface as a RouteResponse of kind error with
// human-readable text in the request language.
type ChatRouter interface {
	Route(ctx context.Context, query string, language domain.Language, conv domain.ConversationContext) domain.RouteResponse
}

// DocumentSearcher is the inbound contract for raw hybrid retrieval,
// exposed to the HTTP layer and the MCP tool server.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, topK int, language domain.Language) ([]domain.RetrievalResult, error)
}

// DocumentReader is the inbound read model for citation lookup.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
