package groq

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/infrastructure/resilience"
)

const (
	answerMaxTokens  = 1024
	segmentMaxTokens = 512
	temperature      = 0.1
)

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL       string
	apiKey        string
	model         string
	maxContextLen int
	httpClient    *http.Client
}

func New(baseURL, apiKey, model string, maxContextLen int) *Client {
	if maxContextLen <= 0 {
		maxContextLen = 4096
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		model:         model,
		maxContextLen: maxContextLen,
		httpClient:    &http.Client{Timeout: 120 * time.Second},
	}
}

// Generator produces the final answer from retrieved context.
type Generator struct {
	client *Client
	exec   *resilience.Executor
}

func NewGenerator(client *Client, exec *resilience.Executor) *Generator {
	return &Generator{client: client, exec: exec}
}

func (g *Generator) GenerateAnswer(ctx context.Context, query string, results []domain.RetrievalResult, language domain.Language) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt(language)},
		{Role: "user", Content: "Contexte:\n" + formatContext(results, language, g.client.maxContextLen) + "\n\nQuestion: " + query},
	}

	var answer string
	err := g.exec.Execute(ctx, "groq_generate", func(ctx context.Context) error {
		text, err := g.client.chatCompletion(ctx, messages, answerMaxTokens)
		if err != nil {
			return err
		}
		answer = text
		return nil
	}, classifyGroqError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("groq_generate", err)
	}
	return answer, nil
}

// Segmenter splits a message into individual questions, one per output line.
type Segmenter struct {
	client *Client
	exec   *resilience.Executor
}

func NewSegmenter(client *Client, exec *resilience.Executor) *Segmenter {
	return &Segmenter{client: client, exec: exec}
}

func (s *Segmenter) Segment(ctx context.Context, text string) ([]string, error) {
	messages := []chatMessage{
		{Role: "system", Content: segmentationPrompt},
		{Role: "user", Content: text},
	}

	var raw string
	err := s.exec.Execute(ctx, "groq_segment", func(ctx context.Context) error {
		out, err := s.client.chatCompletion(ctx, messages, segmentMaxTokens)
		if err != nil {
			return err
		}
		raw = out
		return nil
	}, classifyGroqError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("groq_segment", err)
	}

	questions := splitQuestions(raw)
	if len(questions) == 0 {
		return []string{text}, nil
	}
	return questions, nil
}

// splitQuestions turns the model output into a clean question list, trimming
// list markers the model tends to prepend despite the prompt.
func splitQuestions(raw string) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		if line == "" {
			continue
		}
		questions = append(questions, line)
	}
	return questions
}
