package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent/internal/core/domain"
)

func TestAnswerService_Answer(t *testing.T) {
	ctx := context.Background()

	t.Run("answers with citations", func(t *testing.T) {
		index := &mockVectorIndex{
			matches: []domain.QueryMatch{
				{
					ID:    "x",
					Score: 0.9,
					Metadata: map[string]any{
						"title":   "HR Policy",
						"page":    float64(1),
						"snippet": "Vacation policy allows 20 days.",
					},
				},
			},
		}
		generation := &mockGenerationService{response: "You get 20 days (HR Policy, p1)."}

		svc := NewAnswerService(&mockEmbeddingService{}, index, generation)

		answer, err := svc.Answer(ctx, "How many vacation days?")
		require.NoError(t, err)

		assert.Equal(t, "You get 20 days (HR Policy, p1).", answer.Text)
		require.Len(t, answer.Citations, 1)
		assert.Equal(t, domain.Citation{Title: "HR Policy", Page: 1, Score: 0.9}, answer.Citations[0])

		// Context assembly: question first, then tagged context lines.
		assert.Contains(t, generation.lastUser, "Question: How many vacation days?")
		assert.Contains(t, generation.lastUser, "[HR Policy, p1] Vacation policy allows 20 days.")
		assert.Contains(t, generation.lastSystem, "ONLY the provided context")
	})

	t.Run("empty question is rejected", func(t *testing.T) {
		svc := NewAnswerService(&mockEmbeddingService{}, &mockVectorIndex{}, &mockGenerationService{})

		_, err := svc.Answer(ctx, "   ")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("no matches yields the fallback answer", func(t *testing.T) {
		svc := NewAnswerService(&mockEmbeddingService{}, &mockVectorIndex{}, &mockGenerationService{})

		answer, err := svc.Answer(ctx, "Anything indexed?")
		require.NoError(t, err)

		assert.Equal(t, domain.FallbackAnswerText, answer.Text)
		assert.Empty(t, answer.Citations)
		assert.True(t, answer.IsFallback())
	})

	t.Run("citation order mirrors match order", func(t *testing.T) {
		matches := []domain.QueryMatch{
			{ID: "a", Score: 0.9, Metadata: map[string]any{"title": "Doc A", "page": float64(3), "snippet": "aaa"}},
			{ID: "b", Score: 0.7, Metadata: map[string]any{"title": "Doc B", "page": float64(1), "snippet": "bbb"}},
			{ID: "c", Score: 0.5, Metadata: map[string]any{"title": "Doc C", "page": float64(9), "snippet": "ccc"}},
		}
		index := &mockVectorIndex{matches: matches}

		svc := NewAnswerService(&mockEmbeddingService{}, index, &mockGenerationService{response: "ok"})

		answer, err := svc.Answer(ctx, "which doc?")
		require.NoError(t, err)

		require.Len(t, answer.Citations, len(matches))
		for i, m := range matches {
			assert.Equal(t, m.Title(), answer.Citations[i].Title)
			assert.Equal(t, m.Page(), answer.Citations[i].Page)
			assert.Equal(t, m.Score, answer.Citations[i].Score)
		}
	})

	t.Run("missing metadata degrades to placeholders", func(t *testing.T) {
		index := &mockVectorIndex{
			matches: []domain.QueryMatch{
				{ID: "x", Score: 0.4, Metadata: map[string]any{"snippet": "orphan text"}},
			},
		}
		generation := &mockGenerationService{response: "ok"}

		svc := NewAnswerService(&mockEmbeddingService{}, index, generation)

		answer, err := svc.Answer(ctx, "where from?")
		require.NoError(t, err)

		require.Len(t, answer.Citations, 1)
		assert.Equal(t, domain.PlaceholderTitle, answer.Citations[0].Title)
		assert.Equal(t, domain.PlaceholderPage, answer.Citations[0].Page)
		assert.Contains(t, generation.lastUser, "[doc, p-1] orphan text")
	})

	t.Run("embedding failure is fatal", func(t *testing.T) {
		embedding := &mockEmbeddingService{err: &domain.UpstreamError{Service: "embedding", StatusCode: 502}}

		svc := NewAnswerService(embedding, &mockVectorIndex{}, &mockGenerationService{})

		_, err := svc.Answer(ctx, "question")
		require.Error(t, err)
		assert.True(t, domain.IsUpstream(err))
	})

	t.Run("index failure is fatal", func(t *testing.T) {
		index := &mockVectorIndex{queryErr: &domain.UpstreamError{Service: "vector index", StatusCode: 500}}

		svc := NewAnswerService(&mockEmbeddingService{}, index, &mockGenerationService{})

		_, err := svc.Answer(ctx, "question")
		require.Error(t, err)
		assert.True(t, domain.IsUpstream(err))
	})

	t.Run("generation failure is fatal", func(t *testing.T) {
		index := &mockVectorIndex{
			matches: []domain.QueryMatch{{ID: "x", Score: 0.9, Metadata: map[string]any{"snippet": "text"}}},
		}
		generation := &mockGenerationService{err: &domain.UpstreamError{Service: "generation", StatusCode: 429}}

		svc := NewAnswerService(&mockEmbeddingService{}, index, generation)

		_, err := svc.Answer(ctx, "question")
		require.Error(t, err)
		assert.True(t, domain.IsUpstream(err))
	})

	t.Run("missing generation service", func(t *testing.T) {
		svc := NewAnswerService(&mockEmbeddingService{}, &mockVectorIndex{}, nil)

		_, err := svc.Answer(ctx, "question")
		assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	})

	t.Run("top k is configurable", func(t *testing.T) {
		index := &mockVectorIndex{}

		svc := NewAnswerService(&mockEmbeddingService{}, index, &mockGenerationService{})
		svc.SetTopK(3)

		_, err := svc.Answer(ctx, "question")
		require.NoError(t, err)
		assert.Equal(t, 3, index.lastTopK)
	})

	t.Run("custom prompt store overrides the system prompt", func(t *testing.T) {
		index := &mockVectorIndex{
			matches: []domain.QueryMatch{{ID: "x", Score: 0.9, Metadata: map[string]any{"snippet": "text"}}},
		}
		generation := &mockGenerationService{response: "ok"}

		svc := NewAnswerService(&mockEmbeddingService{}, index, generation)
		svc.SetPromptStore(&mockPromptStore{prompts: map[string]string{
			"answer_system": "custom instruction",
		}})

		_, err := svc.Answer(ctx, "question")
		require.NoError(t, err)
		assert.Equal(t, "custom instruction", generation.lastSystem)
	})
}
