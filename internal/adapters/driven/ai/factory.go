// Package ai provides factory functions for creating the remote service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/docent-labs/docent/internal/adapters/driven/embedding/hf"
	"github.com/docent-labs/docent/internal/adapters/driven/generation/openai"
	"github.com/docent-labs/docent/internal/adapters/driven/vectorindex/pinecone"
	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// InitResult bundles the remote services built during bootstrap.
type InitResult struct {
	Embedding  driven.EmbeddingService
	Index      driven.VectorIndex
	Generation driven.GenerationService
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.Embedding != nil {
		r.Embedding.Close()
	}
	if r.Index != nil {
		r.Index.Close()
	}
	if r.Generation != nil {
		r.Generation.Close()
	}
}

// CreateAndValidateEmbeddingService creates an embedding service and validates
// connectivity. Returns (nil, nil) when the service is not configured, so
// callers decide whether the capability is required for their command.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docent settings show' to check configuration",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'docent settings show' to check configuration",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// CreateAndValidateVectorIndex creates a vector index client and validates
// connectivity. Returns (nil, nil) when the index is not configured.
func CreateAndValidateVectorIndex(settings *domain.IndexSettings) (driven.VectorIndex, error) {
	idx, err := CreateVectorIndex(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docent settings show' to check configuration",
			domain.ErrVectorIndexUnavailable, err)
	}
	if idx == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := idx.Ping(ctx); err != nil {
		idx.Close()
		return nil, fmt.Errorf("%w: index unreachable (%w). Run 'docent settings show' to check configuration",
			domain.ErrVectorIndexUnavailable, err)
	}

	return idx, nil
}

// CreateAndValidateGenerationService creates a generation service and validates
// connectivity. Returns (nil, nil) when the service is not configured.
func CreateAndValidateGenerationService(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	svc, err := CreateGenerationService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'docent settings show' to check configuration",
			domain.ErrGenerationUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'docent settings show' to check configuration",
			domain.ErrGenerationUnavailable, err)
	}

	return svc, nil
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a
// service and pinging it. Intended for `docent settings set` so that bad
// credentials surface at configuration time.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateIndexConfig validates a vector index configuration by creating a
// client and pinging it.
func ValidateIndexConfig(settings *domain.IndexSettings) error {
	idx, err := CreateVectorIndex(settings)
	if err != nil {
		return err
	}
	if idx == nil {
		return nil
	}
	defer idx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return idx.Ping(ctx)
}

// ValidateGenerationConfig validates a generation configuration by creating a
// service and pinging it.
func ValidateGenerationConfig(settings *domain.GenerationSettings) error {
	svc, err := CreateGenerationService(settings)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateEmbeddingService creates the embedding adapter from settings.
// Returns nil if the service is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	return hf.NewEmbeddingService(hf.Config{
		BaseURL: settings.BaseURL,
		APIKey:  settings.APIKey,
		RPS:     settings.RPS,
	})
}

// CreateVectorIndex creates the vector index adapter from settings.
// Returns nil if the index is not configured.
func CreateVectorIndex(settings *domain.IndexSettings) (driven.VectorIndex, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	return pinecone.New(pinecone.Config{
		BaseURL:   settings.BaseURL,
		APIKey:    settings.APIKey,
		Namespace: settings.Namespace,
	})
}

// CreateGenerationService creates the generation adapter from settings.
// Returns nil if the service is not configured.
func CreateGenerationService(settings *domain.GenerationSettings) (driven.GenerationService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	return openai.NewGenerationService(openai.Config{
		APIKey:    settings.APIKey,
		BaseURL:   settings.BaseURL,
		Model:     settings.Model,
		MaxTokens: settings.MaxTokens,
	})
}
