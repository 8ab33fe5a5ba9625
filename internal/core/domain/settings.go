package domain

import "time"

// Default pipeline tuning values.
const (
	// DefaultMaxChars is the default chunk window size in characters.
	DefaultMaxChars = 1200

	// DefaultOverlap is the default overlap between adjacent chunks.
	DefaultOverlap = 200

	// DefaultTopK is the default number of matches retrieved per question.
	DefaultTopK = 10

	// DefaultIngestConcurrency is the default number of chunks embedded
	// and upserted in flight during one ingestion.
	DefaultIngestConcurrency = 4

	// DefaultMaxTokens is the default generation token budget.
	DefaultMaxTokens = 512

	// DefaultMaxUploadBytes caps accepted upload size.
	DefaultMaxUploadBytes = 25 << 20

	// DefaultServerAddr is the default HTTP listen address.
	DefaultServerAddr = ":8080"

	// DefaultGenerationModel is the default chat model name.
	DefaultGenerationModel = "gpt-4o-mini"

	// DefaultCacheTTL is how long cached embeddings live.
	DefaultCacheTTL = 24 * time.Hour
)

// EmbeddingSettings holds embedding service configuration.
// The endpoint speaks the Hugging Face inference dialect:
// {"inputs": text} in, a numeric vector (possibly nested) out.
type EmbeddingSettings struct {
	// BaseURL is the embedding endpoint.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// RPS caps embedding requests per second. Zero means uncapped.
	RPS float64
}

// IsConfigured returns true if the embedding service is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.BaseURL != ""
}

// IndexSettings holds vector index configuration.
// The endpoint speaks the Pinecone dialect: /vectors/upsert and /query.
type IndexSettings struct {
	// BaseURL is the index endpoint.
	BaseURL string

	// APIKey is sent as the index api key header when set.
	APIKey string

	// Namespace scopes upserts and queries. Empty uses the default
	// namespace.
	Namespace string
}

// IsConfigured returns true if the vector index is set up.
func (i IndexSettings) IsConfigured() bool {
	return i.BaseURL != ""
}

// GenerationSettings holds chat/completion service configuration.
// The endpoint speaks the OpenAI chat dialect.
type GenerationSettings struct {
	// BaseURL is the chat completions endpoint base.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Model is the chat model name.
	Model string

	// MaxTokens is the generation token budget.
	MaxTokens int
}

// IsConfigured returns true if the generation service is set up.
func (g GenerationSettings) IsConfigured() bool {
	return g.BaseURL != "" || g.APIKey != ""
}

// ChunkingSettings tunes the chunker.
type ChunkingSettings struct {
	// MaxChars is the window size in characters.
	MaxChars int

	// Overlap is how many characters adjacent windows share.
	// Must be non-negative and smaller than MaxChars.
	Overlap int
}

// QuerySettings tunes the query pipeline.
type QuerySettings struct {
	// TopK is how many matches to retrieve per question.
	TopK int
}

// IngestSettings tunes the ingestion pipeline.
type IngestSettings struct {
	// Concurrency bounds in-flight chunk embed/upsert work.
	Concurrency int
}

// StorageSettings holds local persistence configuration.
type StorageSettings struct {
	// DataDir is where the registry database lives. Empty means the
	// per-user default directory.
	DataDir string
}

// CacheSettings holds the optional embedding cache configuration.
// The cache is disabled unless Addr is set.
type CacheSettings struct {
	// Addr is the redis host:port. Empty disables the cache.
	Addr string

	// Password is the redis password, if any.
	Password string

	// DB is the redis database number.
	DB int

	// TTL is how long cached embeddings live.
	TTL time.Duration
}

// IsConfigured returns true if the cache should be used.
func (c CacheSettings) IsConfigured() bool {
	return c.Addr != ""
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// MaxUploadBytes caps accepted upload size.
	MaxUploadBytes int64
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding service settings.
	Embedding EmbeddingSettings

	// Index holds vector index settings.
	Index IndexSettings

	// Generation holds generation service settings.
	Generation GenerationSettings

	// Chunking holds chunker tuning.
	Chunking ChunkingSettings

	// Query holds query pipeline tuning.
	Query QuerySettings

	// Ingest holds ingestion pipeline tuning.
	Ingest IngestSettings

	// Storage holds local persistence settings.
	Storage StorageSettings

	// Cache holds the optional embedding cache settings.
	Cache CacheSettings

	// Server holds HTTP API settings.
	Server ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Service endpoints (Embedding, Index, Generation) are left unconfigured;
// users must set them via `docent settings` or the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		Index:     IndexSettings{},
		Generation: GenerationSettings{
			Model:     DefaultGenerationModel,
			MaxTokens: DefaultMaxTokens,
		},
		Chunking: ChunkingSettings{
			MaxChars: DefaultMaxChars,
			Overlap:  DefaultOverlap,
		},
		Query: QuerySettings{
			TopK: DefaultTopK,
		},
		Ingest: IngestSettings{
			Concurrency: DefaultIngestConcurrency,
		},
		Cache: CacheSettings{
			TTL: DefaultCacheTTL,
		},
		Server: ServerSettings{
			Addr:           DefaultServerAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
	}
}
