package chunker

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/docent-labs/docent/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.MaxChars() != domain.DefaultMaxChars {
			t.Errorf("expected maxChars %d, got %d", domain.DefaultMaxChars, c.MaxChars())
		}
		if c.Overlap() != domain.DefaultOverlap {
			t.Errorf("expected overlap %d, got %d", domain.DefaultOverlap, c.Overlap())
		}
	})

	t.Run("custom window", func(t *testing.T) {
		c, err := New(WithMaxChars(500), WithOverlap(100))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.MaxChars() != 500 {
			t.Errorf("expected maxChars 500, got %d", c.MaxChars())
		}
		if c.Overlap() != 100 {
			t.Errorf("expected overlap 100, got %d", c.Overlap())
		}
	})

	t.Run("overlap equal to max chars rejected", func(t *testing.T) {
		_, err := New(WithMaxChars(100), WithOverlap(100))
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("overlap above max chars rejected", func(t *testing.T) {
		_, err := New(WithMaxChars(100), WithOverlap(150))
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("negative overlap rejected", func(t *testing.T) {
		_, err := New(WithOverlap(-1))
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("non-positive max chars rejected", func(t *testing.T) {
		_, err := New(WithMaxChars(0))
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestChunker_ChunkPages_Empty(t *testing.T) {
	c, _ := New()

	if got := c.ChunkPages(nil); len(got) != 0 {
		t.Errorf("expected 0 chunks for nil pages, got %d", len(got))
	}
	if got := c.ChunkPages(map[int]string{}); len(got) != 0 {
		t.Errorf("expected 0 chunks for no pages, got %d", len(got))
	}
}

func TestChunker_ChunkPages_SkipsBlankPages(t *testing.T) {
	c, _ := New(WithMaxChars(100), WithOverlap(20))
	pages := map[int]string{
		1: "Real content on page one.",
		2: "",
		3: "   \n\t  ",
		4: "More content on page four.",
	}

	chunks := c.ChunkPages(pages)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Page != 1 || chunks[1].Page != 4 {
		t.Errorf("expected pages [1 4], got [%d %d]", chunks[0].Page, chunks[1].Page)
	}
}

func TestChunker_ChunkPages_SmallPage(t *testing.T) {
	c, _ := New(WithMaxChars(100), WithOverlap(20))
	pages := map[int]string{1: "This is a small page."}

	chunks := c.ChunkPages(pages)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != pages[1] {
		t.Errorf("expected chunk text to match page text")
	}
	if chunks[0].StartOffset != 0 {
		t.Errorf("expected start offset 0, got %d", chunks[0].StartOffset)
	}
}

func TestChunker_ChunkPages_SlidingWindow(t *testing.T) {
	c, _ := New(WithMaxChars(100), WithOverlap(20))
	text := strings.Repeat("x", 250)

	chunks := c.ChunkPages(map[int]string{1: text})

	// Stride 80: windows start at 0, 80, 160, 240.
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.StartOffset != i*80 {
			t.Errorf("chunk %d: expected offset %d, got %d", i, i*80, chunk.StartOffset)
		}
		if len(chunk.Text) > 100 {
			t.Errorf("chunk %d: length %d exceeds window", i, len(chunk.Text))
		}
	}
	if got := len(chunks[3].Text); got != 10 {
		t.Errorf("expected final chunk of 10 chars, got %d", got)
	}
}

func TestChunker_ChunkPages_PageOrder(t *testing.T) {
	c, _ := New(WithMaxChars(50), WithOverlap(10))
	pages := map[int]string{
		3: "Page three text.",
		1: "Page one text.",
		2: "Page two text.",
	}

	chunks := c.ChunkPages(pages)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, want := range []int{1, 2, 3} {
		if chunks[i].Page != want {
			t.Errorf("position %d: expected page %d, got %d", i, want, chunks[i].Page)
		}
	}
}

func TestChunker_ChunkPages_Deterministic(t *testing.T) {
	c, _ := New(WithMaxChars(70), WithOverlap(15))
	pages := map[int]string{
		1: strings.Repeat("alpha beta gamma ", 20),
		2: strings.Repeat("delta epsilon ", 15),
		5: "short tail page",
	}

	first := c.ChunkPages(pages)
	for i := 0; i < 5; i++ {
		if got := c.ChunkPages(pages); !reflect.DeepEqual(first, got) {
			t.Fatalf("run %d differs from first run", i+1)
		}
	}
}

// Concatenating a page's chunks with each non-final chunk's overlapping
// tail removed must reconstruct the page text exactly.
func TestChunker_ChunkPages_Coverage(t *testing.T) {
	tests := []struct {
		name     string
		maxChars int
		overlap  int
		text     string
	}{
		{"no overlap", 40, 0, strings.Repeat("the quick brown fox ", 12)},
		{"with overlap", 100, 20, strings.Repeat("lorem ipsum dolor sit amet ", 25)},
		{"window larger than page", 5000, 200, "tiny page"},
		{"exact multiple of stride", 50, 10, strings.Repeat("z", 200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(WithMaxChars(tt.maxChars), WithOverlap(tt.overlap))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			chunks := c.ChunkPages(map[int]string{1: tt.text})
			if len(chunks) == 0 {
				t.Fatal("expected at least one chunk")
			}

			var rebuilt strings.Builder
			for i, chunk := range chunks {
				piece := chunk.Text
				if i < len(chunks)-1 {
					// Every non-final window contributes only its stride.
					piece = piece[:tt.maxChars-tt.overlap]
				}
				rebuilt.WriteString(piece)
			}

			if rebuilt.String() != tt.text {
				t.Errorf("reconstruction mismatch: got %d chars, want %d", rebuilt.Len(), len(tt.text))
			}
		})
	}
}

func TestChunker_ChunkPages_MultibyteText(t *testing.T) {
	tests := []struct {
		name     string
		maxChars int
		overlap  int
		text     string
	}{
		{"two-byte runes", 5, 1, strings.Repeat("ü", 8)},
		{"three-byte runes", 7, 2, strings.Repeat("日本語", 10)},
		{"mixed ascii and multibyte", 10, 3, strings.Repeat("héllo wörld ", 6)},
		{"window narrower than one rune", 2, 0, "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(WithMaxChars(tt.maxChars), WithOverlap(tt.overlap))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			chunks := c.ChunkPages(map[int]string{1: tt.text})
			if len(chunks) == 0 {
				t.Fatal("expected at least one chunk")
			}

			prevEnd := 0
			for i, chunk := range chunks {
				if !utf8.ValidString(chunk.Text) {
					t.Errorf("chunk %d is not valid UTF-8: %q", i, chunk.Text)
				}

				end := chunk.StartOffset + len(chunk.Text)
				if end > len(tt.text) || tt.text[chunk.StartOffset:end] != chunk.Text {
					t.Errorf("chunk %d does not match page text at offset %d", i, chunk.StartOffset)
				}

				if chunk.StartOffset > prevEnd {
					t.Errorf("gap before chunk %d: offset %d follows end %d", i, chunk.StartOffset, prevEnd)
				}
				if end > prevEnd {
					prevEnd = end
				}
			}

			if prevEnd != len(tt.text) {
				t.Errorf("chunks end at byte %d, page has %d", prevEnd, len(tt.text))
			}
		})
	}
}
