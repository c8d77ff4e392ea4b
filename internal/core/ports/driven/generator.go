package driven

import "context"

// GenerateRequest carries one answer-generation call.
// Exactly one of Context or CacheID should be set: Context sends the
// document text inline, CacheID references a server-side cached context.
type GenerateRequest struct {
	// System is the system instruction for the model.
	System string

	// Prompt is the task prompt, including the user query and, when
	// CacheID is empty, the inlined document context.
	Prompt string

	// CacheID references a remote cached context to generate against.
	CacheID string
}

// Generator invokes a language model to produce a grounded answer.
type Generator interface {
	// Generate produces an answer for the request.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
