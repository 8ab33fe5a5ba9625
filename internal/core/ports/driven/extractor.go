package driven

import (
	"context"
	"io"
)

// TextExtractor turns an uploaded document byte stream into per-page
// text. The core never parses document bytes itself; extraction is an
// external capability behind this port.
//
// Returned text is whitespace-normalised: each line trimmed, blank-line
// runs collapsed. Pages with no extractable text are omitted from the
// mapping. Page numbers are 1-based.
type TextExtractor interface {
	// Extract reads the whole stream and returns page number to text.
	Extract(ctx context.Context, r io.Reader) (map[int]string, error)

	// SupportedExtensions returns the lowercase file extensions this
	// extractor understands, including the leading dot.
	SupportedExtensions() []string
}
