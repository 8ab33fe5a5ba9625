package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask_documents tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the natural-language question to answer from the ingested documents"`
}

// AskOutput is the output schema for the ask_documents tool.
type AskOutput struct {
	Answer    string           `json:"answer"`
	Citations []CitationOutput `json:"citations"`
}

// CitationOutput represents one passage the answer drew on.
type CitationOutput struct {
	Title string  `json:"title"`
	Page  int     `json:"page"`
	Score float64 `json:"score"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
// The tool takes no arguments.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput represents a single registry entry.
type DocumentOutput struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Pages         int    `json:"pages"`
	ChunksIndexed int    `json:"chunks_indexed"`
	ChunksTotal   int    `json:"chunks_total"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_documents",
		Description: "Answer a question from the ingested documents, citing the passages the answer drew on",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the ingested documents",
	}, s.handleListDocuments)
}

// handleAsk handles the ask_documents tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    answer.Text,
		Citations: make([]CitationOutput, len(answer.Citations)),
	}
	for i, c := range answer.Citations {
		output.Citations[i] = CitationOutput{
			Title: c.Title,
			Page:  c.Page,
			Score: c.Score,
		}
	}

	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	output := ListDocumentsOutput{Documents: []DocumentOutput{}}

	if s.ports.Document == nil {
		return nil, output, nil
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output.Documents = make([]DocumentOutput, len(docs))
	output.Count = len(docs)
	for i := range docs {
		output.Documents[i] = DocumentOutput{
			ID:            docs[i].ID,
			Title:         docs[i].Title,
			Pages:         docs[i].Pages,
			ChunksIndexed: docs[i].ChunksIndexed,
			ChunksTotal:   docs[i].ChunksTotal,
		}
	}

	return nil, output, nil
}
