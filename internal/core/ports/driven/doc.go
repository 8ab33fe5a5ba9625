// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipelines to function:
//
//   - TextExtractor: Turns an uploaded byte stream into per-page text
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Stores vectors and answers similarity queries
//   - GenerationService: Composes answers from retrieved context
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentStore: Registry of ingested documents. Without it,
//     ingestion still works but `docent documents` has nothing to list.
//   - EmbeddingCache: Caches embeddings for identical inputs. Without
//     it, every chunk embeds remotely.
//   - ConfigStore: Persisted settings. Without it, configuration comes
//     from defaults and the environment only.
//   - PromptStore: User-editable prompt templates. Without it, services
//     use embedded defaults.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
