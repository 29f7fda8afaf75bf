// Package mcpadapter exposes the retrieval engine to MCP clients over
// stdio so agent tooling can query the RNE corpus directly.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/core/ports"
)

type Server struct {
	mcpServer *server.MCPServer
	searcher  ports.DocumentSearcher
	reader    ports.DocumentReader
	logger    *slog.Logger
}

func NewServer(searcher ports.DocumentSearcher, reader ports.DocumentReader, version string, logger *slog.Logger) *Server {
	s := &Server{
		searcher: searcher,
		reader:   reader,
		logger:   logger,
	}

	s.mcpServer = server.NewMCPServer(
		"rne-assistant",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcpServer.AddTool(mcp.NewTool("search_rne",
		mcp.WithDescription("Recherche hybride (sémantique + lexicale) dans le corpus juridique du Registre National des Entreprises de Tunisie. Retourne les procédures et textes les plus pertinents."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Question ou mots-clés, en français ou en arabe tunisien."),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Nombre maximal de documents à retourner."),
			mcp.DefaultNumber(3),
		),
		mcp.WithString("language",
			mcp.Description("Langue de la requête. Détectée automatiquement si absente."),
			mcp.Enum("fr", "ar"),
		),
	), s.handleSearch)

	s.mcpServer.AddTool(mcp.NewTool("get_rne_document",
		mcp.WithDescription("Récupère un document du corpus RNE par son identifiant, par exemple \"RNE C 101.02_fr\"."),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Identifiant du document."),
		),
	), s.handleGetDocument)

	return s
}

// ServeStdio blocks reading MCP requests from stdin until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("query must not be empty"), nil
	}
	topK := request.GetInt("top_k", 3)
	language := domain.Language(request.GetString("language", ""))

	results, err := s.searcher.Search(ctx, query, topK, language)
	if err != nil {
		s.logger.Error("mcp search failed", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("Aucun document pertinent trouvé dans le corpus RNE."), nil
	}

	payload, err := json.MarshalIndent(searchPayload(results), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleGetDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.reader.GetByID(ctx, id)
	if err != nil {
		if domain.IsKind(err, domain.ErrDocumentNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("document %q not found", id)), nil
		}
		s.logger.Error("mcp document lookup failed", "document_id", id, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode document: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

type searchResultItem struct {
	ID        string  `json:"id"`
	Code      string  `json:"code,omitempty"`
	Procedure string  `json:"procedure,omitempty"`
	Language  string  `json:"language"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
	Excerpt   string  `json:"excerpt"`
}

func searchPayload(results []domain.RetrievalResult) []searchResultItem {
	items := make([]searchResultItem, 0, len(results))
	for _, r := range results {
		items = append(items, searchResultItem{
			ID:        r.Document.ID,
			Code:      r.Document.Code,
			Procedure: r.Document.Procedure,
			Language:  string(r.Document.Language),
			Score:     r.Score,
			Rank:      r.Rank,
			Excerpt:   excerpt(r.Document.Content, 400),
		})
	}
	return items
}

func excerpt(content string, maxRunes int) string {
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	return string(runes[:maxRunes]) + "…"
}
