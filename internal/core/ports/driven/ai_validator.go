package driven

import "github.com/docent-labs/docent/internal/core/domain"

// AIConfigValidator validates remote service configurations.
// Implementations verify that configurations are valid by testing connectivity
// to the underlying services.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the service.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateIndex validates a vector index configuration by pinging the index.
	// Returns nil if configuration is valid or not configured.
	ValidateIndex(config *domain.IndexSettings) error

	// ValidateGeneration validates a generation configuration by pinging the service.
	// Returns nil if configuration is valid or not configured.
	ValidateGeneration(config *domain.GenerationSettings) error
}
