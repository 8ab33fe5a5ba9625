package driven

import (
	"context"

	"github.com/docent-labs/docent/internal/core/domain"
)

// DocumentStore persists the registry of ingested documents.
// Backed by SQLite. The registry is bookkeeping, not retrieval state:
// the vector index remains the source of truth for answering.
type DocumentStore interface {
	// SaveDocument stores or updates a registry entry.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a registry entry by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all entries, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a registry entry.
	// The document's vectors remain in the index.
	DeleteDocument(ctx context.Context, id string) error
}
