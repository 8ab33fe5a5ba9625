package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driven"
	"github.com/docent-labs/docent/internal/core/ports/driving"
	"github.com/docent-labs/docent/internal/logger"
	"github.com/docent-labs/docent/internal/telemetry"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)
var _ driven.PromptStoreAware = (*AnswerService)(nil)

// defaultAnswerSystemPrompt constrains generation to the retrieved
// context. Used when no prompt store is injected or the store fails.
const defaultAnswerSystemPrompt = `You are Docent, an assistant that answers questions about a set of ingested documents.

Answer using ONLY the provided context. Each context line begins with its source in the form [title, p<page>]. If the context does not contain enough information to answer the question, say that you don't know based on the current documents. Do not draw on outside knowledge and do not invent sources.`

// AnswerService runs the query pipeline: embed the question, retrieve
// matches, assemble context, generate an answer, attach citations.
// Unlike ingestion, any upstream failure here is fatal to the whole
// request.
type AnswerService struct {
	embedding   driven.EmbeddingService
	index       driven.VectorIndex
	generation  driven.GenerationService
	promptStore driven.PromptStore
	topK        int
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
	generation driven.GenerationService,
) *AnswerService {
	return &AnswerService{
		embedding:  embedding,
		index:      index,
		generation: generation,
		topK:       domain.DefaultTopK,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetTopK sets how many matches are retrieved per question.
func (s *AnswerService) SetTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// Answer answers one question from the indexed corpus.
func (s *AnswerService) Answer(ctx context.Context, question string) (domain.Answer, error) {
	started := time.Now()

	answer, err := s.answer(ctx, question)
	switch {
	case err != nil:
		telemetry.ObserveQuestion(telemetry.OutcomeFailed, time.Since(started))
	case answer.IsFallback():
		telemetry.ObserveQuestion(telemetry.OutcomeFallback, time.Since(started))
	default:
		telemetry.ObserveQuestion(telemetry.OutcomeCompleted, time.Since(started))
	}
	return answer, err
}

func (s *AnswerService) answer(ctx context.Context, question string) (domain.Answer, error) {
	logger.Section("Question Answering")

	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	if s.embedding == nil {
		return domain.Answer{}, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return domain.Answer{}, domain.ErrVectorIndexUnavailable
	}
	if s.generation == nil {
		return domain.Answer{}, domain.ErrGenerationUnavailable
	}

	logger.Debug("Question: %q", question)

	vector, err := s.embedding.Embed(ctx, question)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embed question: %w", err)
	}
	logger.Debug("Question embedding: %d dimensions", len(vector))

	matches, err := s.index.Query(ctx, vector, s.topK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("query index: %w", err)
	}
	logger.Debug("Retrieved %d matches (topK=%d)", len(matches), s.topK)

	if len(matches) == 0 {
		logger.Info("No matches: returning fallback answer")
		return domain.FallbackAnswer(), nil
	}

	contextBlock, citations := buildContext(matches)

	userPrompt := fmt.Sprintf("Question: %s\n\nContext:\n%s", question, contextBlock)
	text, err := s.generation.Complete(ctx, s.systemPrompt(), userPrompt)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}

	logger.Info("Answered with %d citations", len(citations))
	return domain.Answer{Text: text, Citations: citations}, nil
}

// buildContext assembles the context block and citation list from the
// matches, in the order the index returned them. Every match yields
// exactly one context line and one citation; missing metadata degrades
// to placeholders rather than dropping the match.
func buildContext(matches []domain.QueryMatch) (string, []domain.Citation) {
	var b strings.Builder
	citations := make([]domain.Citation, 0, len(matches))

	for _, m := range matches {
		title := m.Title()
		page := m.Page()

		fmt.Fprintf(&b, "[%s, p%d] %s\n", title, page, m.Snippet())
		citations = append(citations, domain.Citation{
			Title: title,
			Page:  page,
			Score: m.Score,
		})
	}

	return b.String(), citations
}

// systemPrompt loads the answer system instruction, falling back to the
// embedded default when no store is injected or loading fails.
func (s *AnswerService) systemPrompt() string {
	if s.promptStore == nil {
		return defaultAnswerSystemPrompt
	}
	prompt, err := s.promptStore.Load(driven.PromptAnswerSystem)
	if err != nil || prompt == "" {
		logger.Warn("Prompt store load failed, using embedded default: %v", err)
		return defaultAnswerSystemPrompt
	}
	return prompt
}
