package ai

import (
	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates remote service configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates an embedding configuration by pinging the service.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateIndex validates a vector index configuration by pinging the index.
func (v *ConfigValidator) ValidateIndex(config *domain.IndexSettings) error {
	return ValidateIndexConfig(config)
}

// ValidateGeneration validates a generation configuration by pinging the service.
func (v *ConfigValidator) ValidateGeneration(config *domain.GenerationSettings) error {
	return ValidateGenerationConfig(config)
}
