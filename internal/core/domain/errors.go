package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid caller input,
	// such as an empty question or an unsupported upload.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Nothing can be ingested or asked without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrGenerationUnavailable indicates the generation service is not configured.
	// Questions cannot be answered without it; ingestion still works.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrNoExtractableText indicates a document produced no usable text.
	ErrNoExtractableText = errors.New("no extractable text")
)

// UpstreamError reports a failed call to an external service: a non-success
// HTTP status or an unreachable endpoint. It carries the status code and raw
// response body so callers can tell "service down" from "bad request".
// During ingestion these are isolated per chunk; during querying they are
// fatal to the whole request.
type UpstreamError struct {
	// Service names the capability that failed ("embedding", "vector index",
	// "generation").
	Service string

	// StatusCode is the HTTP status returned, or 0 when the call never
	// completed.
	StatusCode int

	// Body is the raw response body, truncated by the adapter.
	Body string

	// Err is the underlying transport error, if any.
	Err error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Service, e.StatusCode, e.Body)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s unreachable: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s error", e.Service)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ParseError reports a response body that could not be interpreted in the
// expected shape (wrong structure, non-numeric vector values). It propagates
// exactly like UpstreamError but is distinguished in logs.
type ParseError struct {
	// Service names the capability whose response was malformed.
	Service string

	// Detail describes what was expected and what was found.
	Detail string

	// Err is the underlying decode error, if any.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s response unparseable: %s", e.Service, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err is, or wraps, an upstream or parse failure.
// Both taxonomies propagate identically; only logging tells them apart.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	var pe *ParseError
	return errors.As(err, &ue) || errors.As(err, &pe)
}
