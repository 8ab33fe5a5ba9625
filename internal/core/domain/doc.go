// Package domain defines the core business entities for Docent.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: Extracted, normalised text for one physical document page
//   - Chunk: A bounded window of page text, sized for embedding
//   - VectorRecord: A chunk embedding plus metadata, as upserted to the index
//   - Answer: A generated answer with its citations
//   - Document: The registry entry recording one ingestion run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
