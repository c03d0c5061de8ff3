package port

import "context"

// TextGenerator abstracts the AI/LLM backend used for commit summaries and
// report narratives. Implementations can target Ollama, OpenAI, or any
// compatible API.
type TextGenerator interface {
	// ModelName returns the identifier of the model being used.
	ModelName() string

	// Generate sends a prompt and returns the complete response.
	// A quota refusal is reported as an error wrapping ErrRateLimited.
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
