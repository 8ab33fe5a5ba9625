package domain

import "time"

// Page holds the extracted text for one physical document page.
// Text is whitespace-normalised (lines trimmed, blank runs collapsed)
// by the extraction adapter before it reaches the chunker.
type Page struct {
	// Number is the 1-based physical page number.
	Number int

	// Text is the normalised extracted text.
	Text string
}

// Chunk is a bounded window of one page's text, sized for embedding.
// Chunks from the same page overlap by a configured number of characters.
// They are ephemeral: a chunk exists only during ingestion and is never
// persisted independently of its embedding.
type Chunk struct {
	// Page is the page number the chunk was cut from.
	Page int

	// Text is the window content, at most the configured chunk size.
	Text string

	// StartOffset is the byte offset of the window within the page text.
	StartOffset int
}

// Document is the registry entry recording one ingestion run.
// The vector index, not this registry, is the source of truth for
// retrieval; the registry exists so users can see what was ingested
// and how completely.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable title used in citations.
	Title string

	// Filename is the original upload filename, if known.
	Filename string

	// Pages is the number of extracted pages.
	Pages int

	// ChunksTotal is the number of chunks the chunker produced.
	ChunksTotal int

	// ChunksIndexed is the number of chunks whose upsert succeeded.
	ChunksIndexed int

	// ChunksSkipped is the number of chunks below the minimum length.
	ChunksSkipped int

	// ChunksFailed is the number of chunks lost to upstream failures.
	ChunksFailed int

	// CreatedAt is when the ingestion ran.
	CreatedAt time.Time
}

// IngestResult is the aggregate outcome of ingesting one document.
// Partial success is not an error: callers read the degree of success
// from ChunksIndexed versus ChunksTotal.
type IngestResult struct {
	// DocumentID is the registry id assigned to this run, empty when
	// no registry is configured.
	DocumentID string

	// PagesCount is the number of pages in the input.
	PagesCount int

	// ChunksTotal is the number of chunks produced by the chunker.
	ChunksTotal int

	// ChunksIndexed is the number of chunks successfully upserted.
	ChunksIndexed int

	// ChunksSkipped is the number of chunks below the minimum length,
	// counted as neither success nor failure.
	ChunksSkipped int

	// ChunksFailed is the number of chunks lost to embedding or upsert
	// failures.
	ChunksFailed int
}

// Complete reports whether every qualifying chunk made it into the index.
func (r IngestResult) Complete() bool {
	return r.ChunksFailed == 0
}

// Document returns a registry entry for this result.
func (r IngestResult) Document(id, title, filename string, at time.Time) Document {
	return Document{
		ID:            id,
		Title:         title,
		Filename:      filename,
		Pages:         r.PagesCount,
		ChunksTotal:   r.ChunksTotal,
		ChunksIndexed: r.ChunksIndexed,
		ChunksSkipped: r.ChunksSkipped,
		ChunksFailed:  r.ChunksFailed,
		CreatedAt:     at,
	}
}
