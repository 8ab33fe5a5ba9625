package driving

import (
	"context"

	"github.com/docent-labs/docent/internal/core/domain"
)

// AnswerService answers natural-language questions from the indexed
// corpus, citing the passages the answer drew on.
type AnswerService interface {
	// Answer runs the full query pipeline for one question.
	// An empty corpus yields the fallback answer, not an error.
	Answer(ctx context.Context, question string) (domain.Answer, error)
}
