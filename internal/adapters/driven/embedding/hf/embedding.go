// Package hf provides an embedding service adapter for endpoints
// speaking the Hugging Face inference dialect: {"inputs": text} in,
// a numeric vector out. This covers the hosted inference API and
// self-hosted text-embeddings-inference servers.
package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second

	// maxErrBody caps how much of an error response is carried on the
	// returned error.
	maxErrBody = 2048
)

// serviceName labels errors from this adapter.
const serviceName = "embedding"

// Config holds configuration for the embedding service.
type Config struct {
	// BaseURL is the embedding endpoint (required). The request posts
	// directly to this URL.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Model labels the vectors this endpoint produces. Used for cache
	// keys only; the endpoint itself decides the model. Defaults to
	// the BaseURL.
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// RPS caps requests per second. Zero means uncapped.
	RPS float64
}

// EmbeddingService generates embeddings over the Hugging Face dialect.
type EmbeddingService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	limiter *rate.Limiter
}

// embeddingRequest is the wire request format.
type embeddingRequest struct {
	Inputs string `json:"inputs"`
}

// NewEmbeddingService creates a new embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("hf: base URL is required")
	}
	if cfg.Model == "" {
		cfg.Model = cfg.BaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &EmbeddingService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		limiter: limiter,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: embedding input is empty", domain.ErrInvalidInput)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	jsonBody, err := json.Marshal(embeddingRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Service: serviceName, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Service: serviceName, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(body),
		}
	}

	vector, err := decodeVector(body)
	if err != nil {
		return nil, &domain.ParseError{Service: serviceName, Detail: err.Error(), Err: err}
	}
	return vector, nil
}

// decodeVector interprets the response body as an embedding vector.
// Two shapes are recognised: a bare numeric array, and an array of
// arrays whose first element is the vector. Numeric strings are
// coerced; anything else is rejected.
func decodeVector(body []byte) ([]float32, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("expected a JSON array: %w", err)
	}

	arr, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", raw)
	}
	if len(arr) == 0 {
		return nil, fmt.Errorf("empty embedding array")
	}

	// Array-of-arrays: the first inner array is the vector.
	if inner, ok := arr[0].([]any); ok {
		return coerceVector(inner)
	}
	return coerceVector(arr)
}

// coerceVector converts loosely typed JSON values into float32s.
func coerceVector(values []any) ([]float32, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("empty embedding vector")
	}

	vector := make([]float32, len(values))
	for i, v := range values {
		switch n := v.(type) {
		case float64:
			vector[i] = float32(n)
		case string:
			f, err := strconv.ParseFloat(n, 32)
			if err != nil {
				return nil, fmt.Errorf("element %d: %q is not numeric", i, n)
			}
			vector[i] = float32(f)
		default:
			return nil, fmt.Errorf("element %d: unexpected %T in vector", i, v)
		}
	}
	return vector, nil
}

// truncateBody limits how much response body travels on errors.
func truncateBody(body []byte) string {
	if len(body) > maxErrBody {
		return string(body[:maxErrBody]) + "..."
	}
	return string(body)
}

// ModelName identifies the model or endpoint producing the vectors.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by embedding a single short
// input. The dialect has no side-effect-free probe endpoint, so this
// runs one tiny inference and discards the result.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("hf: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
