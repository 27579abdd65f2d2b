package ai

import "context"

// Generator produces text completions from an LLM provider.
type Generator interface {
	// Generate returns a single completion for the prompt.
	Generate(ctx context.Context, system, prompt string) (string, error)
	// Stream returns completion fragments as they arrive. The channel is
	// closed when the completion ends; a fragment with a non-nil Err is the
	// final element on failure.
	Stream(ctx context.Context, system, prompt string) (<-chan StreamChunk, error)
	Model() string
}

// StreamChunk is one fragment of a streamed completion.
type StreamChunk struct {
	Content string
	Err     error
}

// Embedder turns text into fixed-size vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Model() string
}
