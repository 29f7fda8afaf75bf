package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/core/ports"
	"github.com/rnechat/rne-assistant/internal/observability/metrics"
)

const serviceName = "rne-api"

type Router struct {
	chat     ports.ChatRouter
	searcher ports.DocumentSearcher
	reader   ports.DocumentReader
	metrics  *metrics.HTTPServerMetrics

	defaultTopK    int
	rateLimitRPS   float64
	rateLimitBurst int
}

func NewRouter(
	chat ports.ChatRouter,
	searcher ports.DocumentSearcher,
	reader ports.DocumentReader,
	m *metrics.HTTPServerMetrics,
	defaultTopK int,
	rateLimitRPS float64,
	rateLimitBurst int,
) *Router {
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	return &Router{
		chat:           chat,
		searcher:       searcher,
		reader:         reader,
		metrics:        m,
		defaultTopK:    defaultTopK,
		rateLimitRPS:   rateLimitRPS,
		rateLimitBurst: rateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/api/chat", rt.handleChat)
	mux.HandleFunc("/api/search", rt.handleSearch)
	mux.HandleFunc("/api/documents/", rt.getDocumentByID)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	handler = backpressureMiddleware(handler, maxConcurrentRequests, backpressureWait)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Query   string `json:"query"`
	Message string `json:"message"`

	Language string                      `json:"language"`
	Context  *domain.ConversationContext `json:"context"`
}

type chatResponse struct {
	Success  bool                 `json:"success"`
	Response domain.RouteResponse `json:"response"`
}

func (rt *Router) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	// Older clients send "message", newer ones "query".
	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = strings.TrimSpace(req.Message)
	}
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	var conv domain.ConversationContext
	if req.Context != nil {
		conv = *req.Context
	}

	start := time.Now()
	resp := rt.chat.Route(r.Context(), query, domain.Language(req.Language), conv)
	rt.recordChatMetrics(resp, time.Since(start))

	writeJSON(w, http.StatusOK, chatResponse{
		Success:  resp.Kind != domain.ResponseError,
		Response: resp,
	})
}

func (rt *Router) recordChatMetrics(resp domain.RouteResponse, duration time.Duration) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordChatTurn(serviceName, string(resp.Kind), string(resp.Language), resp.Degraded, duration)

	switch resp.Kind {
	case domain.ResponseClarifying:
		if resp.Clarify != nil {
			rt.metrics.RecordClarification(serviceName, resp.Clarify.Category)
		}
	case domain.ResponseSegmented:
		rt.metrics.RecordSegmentationFanOut(serviceName, len(resp.Segments))
	case domain.ResponseDirect:
		if resp.Direct != nil {
			rt.metrics.RecordRetrieval(serviceName, "/api/chat", resp.Direct.DocumentsFound)
		}
	}
}

type searchRequest struct {
	Query    string `json:"query"`
	TopK     int    `json:"top_k"`
	Language string `json:"language"`
}

func (rt *Router) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	if req.TopK <= 0 {
		req.TopK = rt.defaultTopK
	}

	results, err := rt.searcher.Search(r.Context(), req.Query, req.TopK, domain.Language(req.Language))
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(serviceName, "/api/search", len(results))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
