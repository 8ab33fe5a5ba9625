// Package chunker splits per-page document text into overlapping
// fixed-size windows sized for embedding.
package chunker

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/docent-labs/docent/internal/core/domain"
)

// Chunker cuts page text into sliding windows. Windows are at most
// MaxChars long and adjacent windows on the same page share Overlap
// characters. Chunking is a pure function of its inputs: same pages,
// same tuning, same output.
type Chunker struct {
	maxChars int
	overlap  int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxChars sets the window size in characters.
func WithMaxChars(n int) Option {
	return func(c *Chunker) {
		c.maxChars = n
	}
}

// WithOverlap sets the overlap between adjacent windows in characters.
func WithOverlap(n int) Option {
	return func(c *Chunker) {
		c.overlap = n
	}
}

// New creates a chunker with the given options. The combination must
// satisfy 0 <= overlap < maxChars; anything else makes the window
// stride non-positive and is rejected here, before any chunking runs.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		maxChars: domain.DefaultMaxChars,
		overlap:  domain.DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.maxChars <= 0 {
		return nil, fmt.Errorf("%w: max chars must be positive, got %d", domain.ErrInvalidInput, c.maxChars)
	}
	if c.overlap < 0 || c.overlap >= c.maxChars {
		return nil, fmt.Errorf("%w: overlap must satisfy 0 <= overlap < max chars, got overlap %d for max chars %d",
			domain.ErrInvalidInput, c.overlap, c.maxChars)
	}

	return c, nil
}

// MaxChars returns the configured window size.
func (c *Chunker) MaxChars() int {
	return c.maxChars
}

// Overlap returns the configured window overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// ChunkPages cuts every page into windows and returns them ordered by
// ascending page number, then by window position within the page.
// Pages whose text is empty or whitespace-only are skipped.
func (c *Chunker) ChunkPages(pages map[int]string) []domain.Chunk {
	numbers := make([]int, 0, len(pages))
	for n := range pages {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var chunks []domain.Chunk
	for _, n := range numbers {
		chunks = append(chunks, c.chunkPage(n, pages[n])...)
	}
	return chunks
}

// chunkPage slides a window across one page's text. Window boundaries
// are pulled back to rune starts so a multibyte code point is never
// split between chunks.
func (c *Chunker) chunkPage(page int, text string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	stride := c.maxChars - c.overlap
	textLen := len(text)
	estimated := (textLen / stride) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	for start := 0; start < textLen; {
		end := start + c.maxChars
		if end >= textLen {
			end = textLen
		} else {
			end = alignToRune(text, end)
		}
		if end <= start {
			// The window is narrower than the rune at start; emit
			// the rune whole rather than splitting it.
			_, size := utf8.DecodeRuneInString(text[start:])
			end = start + size
		}

		chunks = append(chunks, domain.Chunk{
			Page:        page,
			Text:        text[start:end],
			StartOffset: start,
		})

		next := start + stride
		if next < textLen {
			next = alignToRune(text, next)
			if next <= start {
				next = end
			}
		}
		start = next
	}

	return chunks
}

// alignToRune backs i up to the nearest rune boundary at or before it.
func alignToRune(text string, i int) int {
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
