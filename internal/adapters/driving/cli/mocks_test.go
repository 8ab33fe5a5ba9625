package cli

import (
	"context"
	"io"

	"github.com/docent-labs/docent/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer       domain.Answer
	err          error
	lastQuestion string
}

func (m *mockAnswerService) Answer(_ context.Context, question string) (domain.Answer, error) {
	m.lastQuestion = question
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	return m.answer, nil
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result        domain.IngestResult
	err           error
	lastFilenames []string
	lastTitle     string
}

func (m *mockIngestService) IngestPages(_ context.Context, _ map[int]string, title string) (domain.IngestResult, error) {
	m.lastTitle = title
	return m.result, m.err
}

func (m *mockIngestService) IngestStream(_ context.Context, _ io.Reader, filename, title string) (domain.IngestResult, error) {
	m.lastFilenames = append(m.lastFilenames, filename)
	m.lastTitle = title
	return m.result, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	docs []domain.Document
	err  error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setKeys     []string
	setValues   []string
	setErr      error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error {
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.setKeys = append(m.setKeys, key)
	m.setValues = append(m.setValues, value)
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"embedding.api_key", "embedding.base_url", "query.top_k"}
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

// swapServices installs mocks for the package-level services and
// returns a restore function for the deferred cleanup.
func swapServices(answer *mockAnswerService, ingest *mockIngestService,
	docs *mockDocumentService, settings *mockSettingsService) func() {

	prevAnswer := answerService
	prevIngest := ingestService
	prevDocs := documentService
	prevSettings := settingsService

	if answer != nil {
		answerService = answer
	}
	if ingest != nil {
		ingestService = ingest
	}
	if docs != nil {
		documentService = docs
	}
	if settings != nil {
		settingsService = settings
	}

	return func() {
		answerService = prevAnswer
		ingestService = prevIngest
		documentService = prevDocs
		settingsService = prevSettings
	}
}
