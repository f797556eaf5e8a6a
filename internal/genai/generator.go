package genai

import "context"

// Prompt is a structured request to a text-generation backend: a system
// instruction plus the user-facing content. Both backends accept the same
// shape, so the pipeline never cares which one is configured.
type Prompt struct {
	System string
	User   string
}

type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
	Name() string
}
