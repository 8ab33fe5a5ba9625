package pinecone

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent/internal/core/domain"
)

func newTestIndex(t *testing.T, handler http.HandlerFunc) *Index {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	idx, err := New(Config{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		Namespace: "docs",
	})
	require.NoError(t, err)
	return idx
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")
}

func TestIndex_Upsert(t *testing.T) {
	var captured map[string]any
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vectors/upsert", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"upsertedCount":1}`))
	})

	record := domain.VectorRecord{
		ID:     "hr-policy-p1-abc123",
		Vector: []float32{0.1, 0.2, 0.3},
		Metadata: domain.RecordMetadata{
			Title:   "HR Policy",
			Page:    1,
			Snippet: "Vacation policy allows 20 days.",
		},
	}

	require.NoError(t, idx.Upsert(context.Background(), record))

	assert.Equal(t, "docs", captured["namespace"])
	vectors, ok := captured["vectors"].([]any)
	require.True(t, ok)
	require.Len(t, vectors, 1)

	payload := vectors[0].(map[string]any)
	assert.Equal(t, "hr-policy-p1-abc123", payload["id"])
	assert.Len(t, payload["values"].([]any), 3)

	metadata := payload["metadata"].(map[string]any)
	assert.Equal(t, "HR Policy", metadata["title"])
	assert.Equal(t, float64(1), metadata["page"])
	assert.Equal(t, "Vacation policy allows 20 days.", metadata["snippet"])
}

func TestIndex_Upsert_Validation(t *testing.T) {
	idx, err := New(Config{BaseURL: "http://localhost:9999"})
	require.NoError(t, err)

	t.Run("empty id", func(t *testing.T) {
		err := idx.Upsert(context.Background(), domain.VectorRecord{Vector: []float32{0.1}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty vector", func(t *testing.T) {
		err := idx.Upsert(context.Background(), domain.VectorRecord{ID: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestIndex_Upsert_UpstreamError(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	})

	err := idx.Upsert(context.Background(), domain.VectorRecord{ID: "x", Vector: []float32{0.1}})

	require.Error(t, err)
	var upstream *domain.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "invalid api key")
	assert.Equal(t, "vector index", upstream.Service)
}

func TestIndex_Query(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(10), req["topK"])
		assert.Equal(t, true, req["includeMetadata"])
		assert.Equal(t, "docs", req["namespace"])

		_, _ = w.Write([]byte(`{
			"matches": [
				{"id": "a", "score": 0.92, "metadata": {"title": "HR Policy", "page": 1, "snippet": "first"}},
				{"id": "b", "score": 0.87, "metadata": {"title": "Handbook", "page": 4, "snippet": "second"}}
			]
		}`))
	})

	matches, err := idx.Query(context.Background(), []float32{0.1, 0.2, 0.3}, 10)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.InDelta(t, 0.92, matches[0].Score, 1e-9)
	assert.Equal(t, "HR Policy", matches[0].Title())
	assert.Equal(t, 1, matches[0].Page())
	assert.Equal(t, "b", matches[1].ID)
	assert.Equal(t, "second", matches[1].Snippet())
}

func TestIndex_Query_EmptyMatches(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"matches": []}`))
	})

	matches, err := idx.Query(context.Background(), []float32{0.1}, 5)

	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestIndex_Query_Validation(t *testing.T) {
	idx, err := New(Config{BaseURL: "http://localhost:9999"})
	require.NoError(t, err)

	t.Run("empty vector", func(t *testing.T) {
		_, err := idx.Query(context.Background(), nil, 10)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("non-positive topK", func(t *testing.T) {
		_, err := idx.Query(context.Background(), []float32{0.1}, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestIndex_Query_ParseError(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	})

	_, err := idx.Query(context.Background(), []float32{0.1}, 5)

	require.Error(t, err)
	var parseErr *domain.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "vector index", parseErr.Service)
}

func TestIndex_Ping(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/describe_index_stats", r.URL.Path)
			_, _ = w.Write([]byte(`{"dimension": 3, "totalVectorCount": 42}`))
		})
		assert.NoError(t, idx.Ping(context.Background()))
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		server.Close()

		idx, err := New(Config{BaseURL: server.URL})
		require.NoError(t, err)
		assert.Error(t, idx.Ping(context.Background()))
	})
}
