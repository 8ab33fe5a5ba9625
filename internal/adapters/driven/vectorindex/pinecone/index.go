// Package pinecone provides a vector index adapter for services
// speaking the Pinecone REST dialect: /vectors/upsert and /query
// against an index endpoint, with metadata carried on every vector.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	maxErrBody = 2048
)

// serviceName labels errors from this adapter.
const serviceName = "vector index"

// Config holds configuration for the vector index.
type Config struct {
	// BaseURL is the index endpoint (required), e.g.
	// https://docs-a1b2c3.svc.us-east1-gcp.pinecone.io
	BaseURL string

	// APIKey is sent as the Api-Key header when set.
	APIKey string

	// Namespace scopes upserts and queries. Empty uses the default
	// namespace.
	Namespace string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Index talks to a Pinecone-dialect vector index.
type Index struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	namespace string
}

// vectorPayload is one vector as the wire carries it.
type vectorPayload struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// upsertRequest is the /vectors/upsert request format. The endpoint
// accepts a batch; this adapter sends singleton batches so each
// chunk's outcome stays isolated.
type upsertRequest struct {
	Vectors   []vectorPayload `json:"vectors"`
	Namespace string          `json:"namespace,omitempty"`
}

// queryRequest is the /query request format.
type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

// queryResponse is the /query response format.
type queryResponse struct {
	Matches []struct {
		ID       string         `json:"id"`
		Score    float64        `json:"score"`
		Metadata map[string]any `json:"metadata"`
	} `json:"matches"`
}

// New creates a new vector index adapter.
func New(cfg Config) (*Index, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("pinecone: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Index{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		namespace: cfg.Namespace,
	}, nil
}

// Upsert writes one record to the index.
func (x *Index) Upsert(ctx context.Context, record domain.VectorRecord) error {
	if record.ID == "" {
		return fmt.Errorf("%w: record id is empty", domain.ErrInvalidInput)
	}
	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: record vector is empty", domain.ErrInvalidInput)
	}

	req := upsertRequest{
		Vectors: []vectorPayload{{
			ID:     record.ID,
			Values: record.Vector,
			Metadata: map[string]any{
				domain.MetaTitle:   record.Metadata.Title,
				domain.MetaPage:    record.Metadata.Page,
				domain.MetaSnippet: record.Metadata.Snippet,
			},
		}},
		Namespace: x.namespace,
	}

	_, err := x.postJSON(ctx, "/vectors/upsert", req)
	return err
}

// Query returns up to topK matches ranked by the index's own scoring.
func (x *Index) Query(ctx context.Context, vector []float32, topK int) ([]domain.QueryMatch, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidInput, topK)
	}

	body, err := x.postJSON(ctx, "/query", queryRequest{
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       x.namespace,
	})
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &domain.ParseError{Service: serviceName, Detail: "expected a matches object", Err: err}
	}

	matches := make([]domain.QueryMatch, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, domain.QueryMatch{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return matches, nil
}

// Ping validates the service is reachable via the index stats endpoint.
func (x *Index) Ping(ctx context.Context) error {
	if _, err := x.postJSON(ctx, "/describe_index_stats", struct{}{}); err != nil {
		return fmt.Errorf("pinecone: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// postJSON sends one JSON request and returns the response body.
// Non-success statuses and transport failures come back as
// domain.UpstreamError.
func (x *Index) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, x.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if x.apiKey != "" {
		req.Header.Set("Api-Key", x.apiKey)
	}

	resp, err := x.client.Do(req)
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
	return body, nil
}

// truncateBody limits how much response body travels on errors.
func truncateBody(body []byte) string {
	if len(body) > maxErrBody {
		return string(body[:maxErrBody]) + "..."
	}
	return string(body)
}
