package mcp

import (
	"context"

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

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.document != nil {
		return m.document, nil
	}
	return nil, domain.ErrNotFound
}
