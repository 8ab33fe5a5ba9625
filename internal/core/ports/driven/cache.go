package driven

import "context"

// EmbeddingCache stores embeddings keyed by a digest of their input.
// This is an optional service - when nil, every chunk embeds remotely.
//
// Cache misses return domain.ErrNotFound. Callers treat any cache
// failure as a miss; the cache must never make an ingestion fail.
type EmbeddingCache interface {
	// Get returns the cached vector for a key.
	Get(ctx context.Context, key string) ([]float32, error)

	// Set stores a vector under a key. Entry lifetime is the
	// implementation's concern.
	Set(ctx context.Context, key string, vector []float32) error

	// Close releases resources.
	Close() error
}
