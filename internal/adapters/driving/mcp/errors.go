// Package mcp provides an MCP (Model Context Protocol) server adapter for Docent.
// It enables AI assistants like Claude to answer questions from the ingested documents.
package mcp

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("mcp: answer service is required")
