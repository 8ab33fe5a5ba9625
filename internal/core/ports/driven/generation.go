package driven

import "context"

// GenerationService composes an answer from retrieved context.
//
// Implementations may include:
//   - OpenAI chat completions
//   - Any server speaking the same dialect (vLLM, Ollama, LM Studio)
type GenerationService interface {
	// Complete sends the system instructions and user content to the
	// model and returns the generated message text. An absent message
	// field in an otherwise successful response yields an empty string,
	// not an error.
	Complete(ctx context.Context, systemInstructions, userContent string) (string, error)

	// ModelName returns the name of the chat model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
