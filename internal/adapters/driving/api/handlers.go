package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/docent-labs/docent/internal/core/domain"
)

// ingestResponse is the JSON shape returned after an upload.
type ingestResponse struct {
	DocumentID    string `json:"document_id,omitempty"`
	PagesCount    int    `json:"pages_count"`
	ChunksTotal   int    `json:"chunks_total"`
	ChunksIndexed int    `json:"chunks_indexed"`
	ChunksSkipped int    `json:"chunks_skipped"`
	ChunksFailed  int    `json:"chunks_failed"`
}

// askRequest is the JSON body for POST /api/ask.
type askRequest struct {
	Question string `json:"question"`
}

// answerResponse is the JSON shape of an answer.
type answerResponse struct {
	Text      string             `json:"text"`
	Citations []citationResponse `json:"citations"`
}

// citationResponse is the JSON shape of one citation.
type citationResponse struct {
	Title string  `json:"title"`
	Page  int     `json:"page"`
	Score float64 `json:"score"`
}

// documentResponse is the JSON shape of one registry entry.
type documentResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Filename      string    `json:"filename,omitempty"`
	Pages         int       `json:"pages"`
	ChunksTotal   int       `json:"chunks_total"`
	ChunksIndexed int       `json:"chunks_indexed"`
	ChunksSkipped int       `json:"chunks_skipped"`
	ChunksFailed  int       `json:"chunks_failed"`
	CreatedAt     time.Time `json:"created_at"`
}

// handleHealth reports liveness.
func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// handleUpload ingests a multipart PDF upload. The file travels in the
// "file" field; an optional "title" field overrides the filename stem.
func (s *Server) handleUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: missing file field", domain.ErrInvalidInput)
	}

	if fileHeader.Size > s.cfg.MaxUploadBytes {
		return fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrInvalidInput, s.cfg.MaxUploadBytes)
	}
	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".pdf" {
		return fmt.Errorf("%w: unsupported file type %q, expected .pdf", domain.ErrInvalidInput, ext)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	title := strings.TrimSpace(c.FormValue("title"))

	result, err := s.ports.Ingest.IngestStream(c.Request().Context(), f, fileHeader.Filename, title)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ingestResponse{
		DocumentID:    result.DocumentID,
		PagesCount:    result.PagesCount,
		ChunksTotal:   result.ChunksTotal,
		ChunksIndexed: result.ChunksIndexed,
		ChunksSkipped: result.ChunksSkipped,
		ChunksFailed:  result.ChunksFailed,
	})
}

// handleAsk answers a question from the indexed corpus.
func (s *Server) handleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput)
	}

	answer, err := s.ports.Answer.Answer(c.Request().Context(), req.Question)
	if err != nil {
		return err
	}

	resp := answerResponse{
		Text:      answer.Text,
		Citations: make([]citationResponse, 0, len(answer.Citations)),
	}
	for _, cit := range answer.Citations {
		resp.Citations = append(resp.Citations, citationResponse{
			Title: cit.Title,
			Page:  cit.Page,
			Score: cit.Score,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// handleListDocuments returns the ingestion registry, newest first.
func (s *Server) handleListDocuments(c echo.Context) error {
	if s.ports.Documents == nil {
		return c.JSON(http.StatusOK, []documentResponse{})
	}

	docs, err := s.ports.Documents.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]documentResponse, 0, len(docs))
	for _, d := range docs {
		resp = append(resp, documentResponse{
			ID:            d.ID,
			Title:         d.Title,
			Filename:      d.Filename,
			Pages:         d.Pages,
			ChunksTotal:   d.ChunksTotal,
			ChunksIndexed: d.ChunksIndexed,
			ChunksSkipped: d.ChunksSkipped,
			ChunksFailed:  d.ChunksFailed,
			CreatedAt:     d.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
