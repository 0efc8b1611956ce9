// Package llm talks to an OpenAI-compatible chat completion endpoint
// with retry and payload-decoding behavior tuned for batch use.
package llm

import "context"

// Config captures the runtime settings required to talk to the model.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	Temperature    float64
}

// Client is the completion surface the pipeline depends on.
type Client interface {
	// Complete returns the plain-text completion for a prompt pair.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// CompleteJSON requests a JSON-only completion and returns the raw
	// payload produced by the model.
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// HealthCheck verifies the endpoint, key, and model are usable.
	HealthCheck(ctx context.Context) error
}
