// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Note: This is separate from VectorIndex which stores and searches
// vectors. EmbeddingService generates vectors; VectorIndex stores them.
//
// The port is a single attempt: no retry or backoff inside. Failures
// surface as domain.UpstreamError (bad status, unreachable) or
// domain.ParseError (response not a numeric vector), and the caller
// decides whether to isolate or abort.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelName identifies the model or endpoint producing the vectors.
	// Cache keys incorporate this so different models never collide.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
