package domain

import "strconv"

// Metadata keys carried on every vector record.
const (
	MetaTitle   = "title"
	MetaPage    = "page"
	MetaSnippet = "snippet"
)

// Placeholder values used when a match's metadata is incomplete.
// Incomplete metadata never drops a citation.
const (
	// PlaceholderTitle stands in for a missing title.
	PlaceholderTitle = "doc"

	// PlaceholderPage stands in for a missing or non-numeric page.
	PlaceholderPage = -1
)

// FallbackAnswerText is returned verbatim when retrieval finds nothing.
const FallbackAnswerText = "I don't know based on the current documents."

// VectorRecord is one chunk embedding plus its metadata, as upserted to
// the vector index. The id must be globally unique per upsert: the index
// silently overwrites on collision, so the pipeline composes ids from
// document title, page number and a random suffix.
type VectorRecord struct {
	// ID is the globally unique record identifier.
	ID string

	// Vector is the chunk embedding.
	Vector []float32

	// Metadata travels with the vector and comes back on query matches.
	Metadata RecordMetadata
}

// RecordMetadata is the structured metadata stored with each vector.
type RecordMetadata struct {
	// Title is the document title, used in citations.
	Title string

	// Page is the 1-based page the chunk came from.
	Page int

	// Snippet is the chunk text truncated for display.
	Snippet string
}

// QueryMatch is one ranked result from a vector index query. It is
// read-only; the score follows the index's own similarity semantics and
// is never renormalised here. Metadata is kept loosely typed because the
// index returns whatever was stored, fields may be missing or oddly
// typed, and the pipeline must degrade to placeholders rather than fail.
type QueryMatch struct {
	// ID is the matched record's identifier.
	ID string

	// Score is the index's similarity score for this match.
	Score float64

	// Metadata is the stored metadata as returned by the index.
	Metadata map[string]any
}

// Title returns the match's title, or PlaceholderTitle when absent.
func (m QueryMatch) Title() string {
	if s, ok := m.Metadata[MetaTitle].(string); ok && s != "" {
		return s
	}
	return PlaceholderTitle
}

// Page returns the match's page number, or PlaceholderPage when the
// field is missing or non-numeric. Indexes round-trip numbers as JSON,
// so a stored int usually comes back as a float64.
func (m QueryMatch) Page() int {
	switch v := m.Metadata[MetaPage].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return PlaceholderPage
}

// Snippet returns the stored snippet, or an empty string.
func (m QueryMatch) Snippet() string {
	s, _ := m.Metadata[MetaSnippet].(string)
	return s
}

// Citation points a reader back to the source of retrieved context.
// Each citation derives 1:1 from a query match consumed in the same
// answer; none are fabricated and none are dropped.
type Citation struct {
	// Title is the cited document's title.
	Title string

	// Page is the cited page, PlaceholderPage when unknown.
	Page int

	// Score is the match's relevance score.
	Score float64
}

// Answer is the final output of the query pipeline.
type Answer struct {
	// Text is the generated answer, verbatim from the generation service.
	Text string

	// Citations follow the order the index returned its matches,
	// never re-sorted.
	Citations []Citation
}

// FallbackAnswer is the defined terminal state for a query that matched
// nothing: a canned message and no citations. It is a success, not an
// error.
func FallbackAnswer() Answer {
	return Answer{
		Text:      FallbackAnswerText,
		Citations: []Citation{},
	}
}

// IsFallback reports whether the answer is the no-matches fallback.
func (a Answer) IsFallback() bool {
	return a.Text == FallbackAnswerText && len(a.Citations) == 0
}
