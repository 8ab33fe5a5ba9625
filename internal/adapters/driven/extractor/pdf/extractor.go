// Package pdf implements the TextExtractor port on top of the tabula
// PDF library. Extraction is done page by page so that page numbers
// survive into chunk metadata and citations.
package pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/reader"

	"github.com/docent-labs/docent/internal/core/domain"
	"github.com/docent-labs/docent/internal/core/ports/driven"
	"github.com/docent-labs/docent/internal/logger"
)

// Extractor extracts per-page text from PDF streams.
type Extractor struct{}

// Compile-time check that Extractor implements the TextExtractor interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// New creates a PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract spools the stream to a temporary file (tabula reads PDFs
// through an *os.File), then walks the document page by page. Pages
// that fail to extract or contain no text are skipped; a warning is
// logged and the rest of the document is still processed. If no page
// yields text the document is rejected with ErrNoExtractableText.
func (e *Extractor) Extract(ctx context.Context, r io.Reader) (map[int]string, error) {
	tmp, err := os.CreateTemp("", "docent-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, r); err != nil {
		return nil, fmt.Errorf("failed to spool upload: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind temp file: %w", err)
	}

	rd, err := reader.NewReader(tmp)
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable PDF: %v", domain.ErrInvalidInput, err)
	}

	count, err := tabula.FromReader(rd).PageCount()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read page tree: %v", domain.ErrInvalidInput, err)
	}

	pages := make(map[int]string, count)
	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, warns, err := tabula.FromReader(rd).Pages(n).Text()
		if err != nil {
			logger.Warn("pdf: page %d extraction failed: %v", n, err)
			continue
		}
		for _, w := range warns {
			logger.Warn("pdf: page %d: %s", n, w.Message)
		}

		text = normalise(text)
		if text == "" {
			continue
		}
		pages[n] = text
	}

	if len(pages) == 0 {
		return nil, domain.ErrNoExtractableText
	}
	return pages, nil
}

// SupportedExtensions returns the file extensions handled by this extractor.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}

// normalise trims trailing whitespace from each line and collapses runs
// of blank lines into a single one. PDF text extraction tends to leave
// ragged spacing behind, which would otherwise bloat chunks.
func normalise(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	// Drop a trailing blank line left by the collapse.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
