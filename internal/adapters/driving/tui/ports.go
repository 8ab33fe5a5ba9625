// Package tui provides an interactive chat interface for docent.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/docent-labs/docent/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the chat UI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions from the indexed documents.
	Answer driving.AnswerService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	return nil
}
