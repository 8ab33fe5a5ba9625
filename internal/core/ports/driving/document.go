package driving

import (
	"context"

	"github.com/docent-labs/docent/internal/core/domain"
)

// DocumentService exposes the registry of ingested documents.
type DocumentService interface {
	// List returns all registry entries, newest first.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves one registry entry by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)
}
