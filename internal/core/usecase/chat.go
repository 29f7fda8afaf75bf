package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rnechat/rne-assistant/internal/core/domain"
	"github.com/rnechat/rne-assistant/internal/core/ports"
)

// Router drives one conversational turn. It is stateless across requests;
// the only carried state is the ConversationContext the caller echoes back,
// which makes every turn independently routable by any replica.
type Router struct {
	retriever ports.DocumentSearcher
	segmenter ports.QuestionSegmenter
	generator ports.AnswerGenerator
	detector  ports.LanguageDetector
	clarify   *ClarificationTable
	topK      int
	logger    *slog.Logger
}

func NewRouter(
	retriever ports.DocumentSearcher,
	segmenter ports.QuestionSegmenter,
	generator ports.AnswerGenerator,
	detector ports.LanguageDetector,
	clarify *ClarificationTable,
	topK int,
	logger *slog.Logger,
) *Router {
	if topK <= 0 {
		topK = 3
	}
	return &Router{
		retriever: retriever,
		segmenter: segmenter,
		generator: generator,
		detector:  detector,
		clarify:   clarify,
		topK:      topK,
		logger:    logger,
	}
}

// Route classifies the message and dispatches it down one of three paths:
// the follow-up path when the previous turn asked for clarification, the
// segmented path when the message carries several questions, or the single
// question path with a vagueness gate in front of retrieval.
func (r *Router) Route(ctx context.Context, query string, language domain.Language, conv domain.ConversationContext) domain.RouteResponse {
	query = strings.TrimSpace(query)
	if !language.Supported() {
		language = r.detector.Detect(query)
	}

	if query == "" {
		return domain.RouteResponse{
			Kind:      domain.ResponseError,
			Language:  language,
			ErrorText: processingErrorMessage(language),
		}
	}

	if conv.AwaitingClarification && conv.OriginalQuery != "" {
		return r.routeFollowUp(ctx, query, language, conv)
	}

	questions := r.segment(ctx, query)
	if len(questions) > 1 {
		return r.routeSegmented(ctx, questions, language)
	}

	if category, vague := r.clarify.Analyze(query); vague {
		clar := r.clarify.Clarification(category, language)
		r.logger.Info("clarification requested", "category", category, "language", language)
		return domain.RouteResponse{
			Kind:     domain.ResponseClarifying,
			Language: language,
			Clarify:  &clar,
			Context: domain.ConversationContext{
				OriginalQuery:         query,
				AwaitingClarification: true,
			},
		}
	}

	return r.routeDirect(ctx, query, language)
}

// routeFollowUp answers the refined query formed from the original vague
// question and the option the user just picked. The clarification state is
// cleared whatever the outcome so the conversation cannot wedge.
func (r *Router) routeFollowUp(ctx context.Context, selection string, language domain.Language, conv domain.ConversationContext) domain.RouteResponse {
	refined := fmt.Sprintf("%s - %s", conv.OriginalQuery, selection)
	r.logger.Info("follow-up turn", "refined_query", refined, "language", language)
	return r.routeDirect(ctx, refined, language)
}

func (r *Router) routeDirect(ctx context.Context, query string, language domain.Language) domain.RouteResponse {
	results, err := r.retriever.Search(ctx, query, r.topK, language)
	if err != nil {
		r.logger.Error("retrieval failed", "error", err, "language", language)
		return domain.RouteResponse{
			Kind:      domain.ResponseError,
			Language:  language,
			ErrorText: processingErrorMessage(language),
		}
	}

	if len(results) == 0 {
		return domain.RouteResponse{
			Kind:     domain.ResponseDirect,
			Language: language,
			Direct:   &domain.DirectAnswer{Text: noResultsMessage(language)},
		}
	}

	answer, degraded := r.generate(ctx, query, results, language)
	return domain.RouteResponse{
		Kind:     domain.ResponseDirect,
		Language: language,
		Direct: &domain.DirectAnswer{
			Text:           answer,
			References:     citedReferences(answer, results),
			DocumentsFound: len(results),
		},
		Degraded: degraded,
	}
}

// routeSegmented answers each sub-question independently. A failure on one
// question degrades that segment only; the remaining questions still get
// real answers, in the original asking order.
func (r *Router) routeSegmented(ctx context.Context, questions []string, language domain.Language) domain.RouteResponse {
	segments := make([]domain.SegmentedAnswer, 0, len(questions))
	degraded := false

	for _, q := range questions {
		seg := domain.SegmentedAnswer{Question: q}
		results, err := r.retriever.Search(ctx, q, r.topK, language)
		switch {
		case err != nil:
			r.logger.Error("retrieval failed for sub-question", "error", err, "question", q)
			seg.Answer = processingErrorMessage(language)
			degraded = true
		case len(results) == 0:
			seg.Answer = noResultsMessage(language)
		default:
			seg.DocumentsFound = len(results)
			var segDegraded bool
			seg.Answer, segDegraded = r.generate(ctx, q, results, language)
			degraded = degraded || segDegraded
		}
		segments = append(segments, seg)
	}

	return domain.RouteResponse{
		Kind:     domain.ResponseSegmented,
		Language: language,
		Segments: segments,
		Combined: formatSegments(segments, language),
		Degraded: degraded,
	}
}

// generate calls the answer generator, substituting an apology template when
// it fails. The bool result reports the substitution.
func (r *Router) generate(ctx context.Context, query string, results []domain.RetrievalResult, language domain.Language) (string, bool) {
	answer, err := r.generator.GenerateAnswer(ctx, query, results, language)
	if err != nil {
		r.logger.Error("answer generation failed", "error", err, "language", language)
		return generateFailedMessage(language), true
	}
	return answer, false
}

// segment asks the segmenter to split the message and degrades any failure
// to treating the whole message as a single question.
func (r *Router) segment(ctx context.Context, query string) []string {
	questions, err := r.segmenter.Segment(ctx, query)
	if err != nil || len(questions) == 0 {
		if err != nil {
			r.logger.Warn("question segmentation failed, treating as single question", "error", err)
		}
		return []string{query}
	}
	return questions
}
