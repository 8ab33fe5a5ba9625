package driven

import (
	"context"

	"github.com/docent-labs/docent/internal/core/domain"
)

// VectorIndex stores chunk embeddings and answers similarity queries.
// Backed by a remote vector database with its own consistency model:
// upserts are at-least-once and read-after-write is not guaranteed, so
// a query racing an ingestion may not see just-indexed chunks.
//
// The index silently overwrites on id collision. Callers must keep
// record ids globally unique per logical chunk.
type VectorIndex interface {
	// Upsert writes one record to the index.
	Upsert(ctx context.Context, record domain.VectorRecord) error

	// Query returns up to topK matches ranked by the index's own
	// scoring. An empty result is a valid outcome, not an error.
	Query(ctx context.Context, vector []float32, topK int) ([]domain.QueryMatch, error)

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
