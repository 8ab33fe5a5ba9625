package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/docent-labs/docent/internal/chunker"
	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driven"
	"github.com/docent-labs/docent/internal/core/ports/driving"
	"github.com/docent-labs/docent/internal/logger"
	"github.com/docent-labs/docent/internal/telemetry"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

const (
	// minChunkChars is the minimum trimmed chunk length worth embedding.
	// Shorter chunks are skipped: counted as neither success nor failure.
	minChunkChars = 20

	// snippetMaxChars is how much chunk text travels in record metadata.
	snippetMaxChars = 300
)

// chunkOutcome tags the result of processing a single chunk.
type chunkOutcome int

const (
	outcomeIndexed chunkOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// IngestService feeds documents into the vector index: chunk, embed,
// upsert. Per-chunk failures are logged and absorbed into the result
// counts; one bad chunk never aborts the batch.
type IngestService struct {
	chunker   *chunker.Chunker
	embedding driven.EmbeddingService
	index     driven.VectorIndex

	extractor driven.TextExtractor
	docStore  driven.DocumentStore
	cache     driven.EmbeddingCache

	concurrency int
}

// NewIngestService creates a new ingest service. The chunker, embedding
// service and vector index are required; extractor, registry and cache
// are optional and injected via setters.
func NewIngestService(
	ch *chunker.Chunker,
	embedding driven.EmbeddingService,
	index driven.VectorIndex,
) *IngestService {
	return &IngestService{
		chunker:     ch,
		embedding:   embedding,
		index:       index,
		concurrency: domain.DefaultIngestConcurrency,
	}
}

// SetExtractor sets the text extractor used by IngestStream.
func (s *IngestService) SetExtractor(extractor driven.TextExtractor) {
	s.extractor = extractor
}

// SetDocumentStore sets the registry that records ingestion runs.
func (s *IngestService) SetDocumentStore(store driven.DocumentStore) {
	s.docStore = store
}

// SetEmbeddingCache sets the optional embedding cache.
func (s *IngestService) SetEmbeddingCache(cache driven.EmbeddingCache) {
	s.cache = cache
}

// SetConcurrency bounds how many chunks are embedded and upserted in
// flight. Values below 1 fall back to sequential processing.
func (s *IngestService) SetConcurrency(n int) {
	if n < 1 {
		n = 1
	}
	s.concurrency = n
}

// IngestStream extracts pages from a document byte stream and ingests
// them. When title is empty, the filename stem is used.
func (s *IngestService) IngestStream(
	ctx context.Context, r io.Reader, filename, title string,
) (domain.IngestResult, error) {
	if s.extractor == nil {
		return domain.IngestResult{}, fmt.Errorf("%w: no text extractor configured", domain.ErrInvalidInput)
	}

	if title == "" {
		title = titleFromFilename(filename)
	}

	logger.Section("Document Ingestion")
	logger.Debug("Extracting %q", filename)

	pages, err := s.extractor.Extract(ctx, r)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("extract %q: %w", filename, err)
	}

	result, err := s.ingestPages(ctx, pages, title, filename)
	if err != nil {
		return domain.IngestResult{}, err
	}
	return result, nil
}

// IngestPages chunks, embeds and indexes already-extracted pages.
func (s *IngestService) IngestPages(
	ctx context.Context, pages map[int]string, title string,
) (domain.IngestResult, error) {
	logger.Section("Document Ingestion")
	return s.ingestPages(ctx, pages, title, "")
}

func (s *IngestService) ingestPages(
	ctx context.Context, pages map[int]string, title, filename string,
) (domain.IngestResult, error) {
	if s.embedding == nil {
		return domain.IngestResult{}, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return domain.IngestResult{}, domain.ErrVectorIndexUnavailable
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = domain.PlaceholderTitle
	}
	if len(pages) == 0 {
		return domain.IngestResult{}, fmt.Errorf("%w: document has no pages", domain.ErrNoExtractableText)
	}

	started := time.Now()
	chunks := s.chunker.ChunkPages(pages)
	logger.Info("Chunked %q: %d pages, %d chunks", title, len(pages), len(chunks))

	result := domain.IngestResult{
		PagesCount:  len(pages),
		ChunksTotal: len(chunks),
	}

	var mu sync.Mutex
	record := func(outcome chunkOutcome) {
		mu.Lock()
		defer mu.Unlock()
		switch outcome {
		case outcomeIndexed:
			result.ChunksIndexed++
		case outcomeSkipped:
			result.ChunksSkipped++
		case outcomeFailed:
			result.ChunksFailed++
		}
	}

	// Chunks carry no data dependency on each other, so they are
	// processed with bounded concurrency. Workers always return nil:
	// a chunk failure is an outcome, not a group error, which is what
	// keeps per-chunk isolation intact.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, c := range chunks {
		g.Go(func() error {
			record(s.processChunk(gctx, c, title))
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors

	telemetry.ObserveIngest(result, time.Since(started))
	logger.Info("Ingested %q: %d indexed, %d skipped, %d failed",
		title, result.ChunksIndexed, result.ChunksSkipped, result.ChunksFailed)

	s.saveRegistryEntry(ctx, &result, title, filename)
	return result, nil
}

// processChunk runs one chunk through embed and upsert, returning the
// tagged outcome. All failures are logged here and absorbed.
func (s *IngestService) processChunk(ctx context.Context, c domain.Chunk, title string) chunkOutcome {
	text := strings.TrimSpace(c.Text)
	if len(text) < minChunkChars {
		logger.Debug("Skipping chunk p%d@%d: %d chars below minimum", c.Page, c.StartOffset, len(text))
		return outcomeSkipped
	}

	vector, err := s.embedChunk(ctx, c.Text)
	if err != nil {
		logUpstream("embedding", c, err)
		telemetry.CountChunk(telemetry.OutcomeFailed)
		return outcomeFailed
	}

	rec := domain.VectorRecord{
		ID:     recordID(title, c.Page),
		Vector: vector,
		Metadata: domain.RecordMetadata{
			Title:   title,
			Page:    c.Page,
			Snippet: truncateSnippet(c.Text, snippetMaxChars),
		},
	}

	if err := s.index.Upsert(ctx, rec); err != nil {
		logUpstream("upsert", c, err)
		telemetry.CountChunk(telemetry.OutcomeFailed)
		return outcomeFailed
	}

	telemetry.CountChunk(telemetry.OutcomeIndexed)
	return outcomeIndexed
}

// embedChunk embeds one chunk's text, consulting the cache when one is
// configured. Cache failures are logged and treated as misses; the
// cache must never make an ingestion fail.
func (s *IngestService) embedChunk(ctx context.Context, text string) ([]float32, error) {
	if s.cache == nil {
		return s.embedding.Embed(ctx, text)
	}

	key := cacheKey(s.embedding.ModelName(), text)
	if vector, err := s.cache.Get(ctx, key); err == nil {
		logger.Debug("Embedding cache hit")
		return vector, nil
	}

	vector, err := s.embedding.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, vector); err != nil {
		logger.Warn("Embedding cache store failed: %v", err)
	}
	return vector, nil
}

// saveRegistryEntry records the run in the document registry. The index
// is the source of truth; a registry failure is logged, not propagated.
func (s *IngestService) saveRegistryEntry(ctx context.Context, result *domain.IngestResult, title, filename string) {
	if s.docStore == nil {
		return
	}

	doc := result.Document(uuid.New().String(), title, filename, time.Now().UTC())
	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		logger.Warn("Registry save for %q failed: %v", title, err)
		return
	}
	result.DocumentID = doc.ID
}

// recordID composes a vector record id from document identity, page and
// a random suffix. The suffix keeps repeated uploads of the same
// document from overwriting each other in the index.
func recordID(title string, page int) string {
	return fmt.Sprintf("%s-p%d-%s", slugify(title), page, uuid.New().String()[:8])
}

// slugify reduces a title to a compact id-safe form.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "doc"
	}
	if len(slug) > 48 {
		slug = slug[:48]
	}
	return slug
}

// truncateSnippet cuts text to at most max runes, never splitting a
// multibyte code point.
func truncateSnippet(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return string(runes[:max])
}

// cacheKey digests the embedding input so arbitrary chunk text becomes
// a fixed-size key. The model name is part of the digest: vectors from
// different models must never collide.
func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}

// titleFromFilename derives a readable title from an upload filename.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.TrimSpace(stem)
	if stem == "" || stem == "." {
		return domain.PlaceholderTitle
	}
	return stem
}

// logUpstream records a per-chunk failure, distinguishing parse errors
// from upstream errors in the log line.
func logUpstream(step string, c domain.Chunk, err error) {
	var pe *domain.ParseError
	if errors.As(err, &pe) {
		logger.Warn("Chunk p%d@%d %s response unparseable: %v", c.Page, c.StartOffset, step, err)
		return
	}
	logger.Warn("Chunk p%d@%d %s failed: %v", c.Page, c.StartOffset, step, err)
}
