package driving

import (
	"context"
	"io"

	"github.com/docent-labs/docent/internal/core/domain"
)

// IngestService feeds documents into the vector index.
type IngestService interface {
	// IngestPages chunks, embeds and indexes already-extracted pages.
	// Per-chunk failures are absorbed into the result counts; the
	// returned error is reserved for failures before any chunk work
	// starts (invalid input, no usable pages).
	IngestPages(ctx context.Context, pages map[int]string, title string) (domain.IngestResult, error)

	// IngestStream extracts pages from a document byte stream and
	// ingests them. When title is empty, the filename stem is used.
	IngestStream(ctx context.Context, r io.Reader, filename, title string) (domain.IngestResult, error)
}
