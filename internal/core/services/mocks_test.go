package services

import (
	"context"
	"io"
	"sync"

	"github.com/docent-labs/docent/internal/core/domain"
)

// mockEmbeddingService is a mock implementation of driven.EmbeddingService.
type mockEmbeddingService struct {
	mu       sync.Mutex
	vector   []float32
	err      error
	failOn   map[string]bool // inputs that fail; others succeed
	embedded []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[text] {
		return nil, &domain.UpstreamError{Service: "embedding", StatusCode: 503, Body: "overloaded"}
	}
	if m.err != nil {
		return nil, m.err
	}
	m.embedded = append(m.embedded, text)
	if m.vector != nil {
		return m.vector, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbeddingService) ModelName() string { return "mock-embedder" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.err }

func (m *mockEmbeddingService) Close() error { return nil }

// mockVectorIndex is a mock implementation of driven.VectorIndex.
type mockVectorIndex struct {
	mu        sync.Mutex
	matches   []domain.QueryMatch
	upsertErr error
	queryErr  error
	upserted  []domain.VectorRecord
	lastTopK  int
}

func (m *mockVectorIndex) Upsert(_ context.Context, record domain.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, record)
	return nil
}

func (m *mockVectorIndex) Query(_ context.Context, _ []float32, topK int) ([]domain.QueryMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTopK = topK
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.matches, nil
}

func (m *mockVectorIndex) Ping(_ context.Context) error { return nil }

func (m *mockVectorIndex) Close() error { return nil }

// mockGenerationService is a mock implementation of driven.GenerationService.
type mockGenerationService struct {
	response   string
	err        error
	lastSystem string
	lastUser   string
}

func (m *mockGenerationService) Complete(_ context.Context, system, user string) (string, error) {
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockGenerationService) ModelName() string { return "mock-generator" }

func (m *mockGenerationService) Ping(_ context.Context) error { return m.err }

func (m *mockGenerationService) Close() error { return nil }

// mockDocumentStore is a mock implementation of driven.DocumentStore.
type mockDocumentStore struct {
	mu      sync.Mutex
	docs    []domain.Document
	saveErr error
	listErr error
	getErr  error
}

func (m *mockDocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.docs = append(m.docs, *doc)
	return nil
}

func (m *mockDocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.docs, nil
}

func (m *mockDocumentStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.docs {
		if m.docs[i].ID == id {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// mockExtractor is a mock implementation of driven.TextExtractor.
type mockExtractor struct {
	pages map[int]string
	err   error
}

func (m *mockExtractor) Extract(_ context.Context, _ io.Reader) (map[int]string, error) {
	return m.pages, m.err
}

func (m *mockExtractor) SupportedExtensions() []string { return []string{".pdf"} }

// mockEmbeddingCache is a mock implementation of driven.EmbeddingCache.
type mockEmbeddingCache struct {
	mu      sync.Mutex
	entries map[string][]float32
	getErr  error
	setErr  error
	hits    int
	sets    int
}

func (m *mockEmbeddingCache) Get(_ context.Context, key string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if v, ok := m.entries[key]; ok {
		m.hits++
		return v, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockEmbeddingCache) Set(_ context.Context, key string, vector []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	if m.entries == nil {
		m.entries = make(map[string][]float32)
	}
	m.entries[key] = vector
	m.sets++
	return nil
}

func (m *mockEmbeddingCache) Close() error { return nil }

// mockPromptStore is a mock implementation of driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}
