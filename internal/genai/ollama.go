package genai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

type OllamaConfig struct {
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OllamaGenerator uses the native Ollama chat API for locally hosted models.
type OllamaGenerator struct {
	client      *api.Client
	model       string
	temperature float64
}

func NewOllamaGenerator(cfg OllamaConfig) (*OllamaGenerator, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = "http://localhost:11434"
	}
	// api.NewClient expects the server root, not an /v1 suffix.
	base = strings.TrimSuffix(base, "/v1")
	base = strings.TrimSuffix(base, "/")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse ollama base URL %q: %w", base, err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &OllamaGenerator{
		client:      api.NewClient(parsed, &http.Client{Timeout: timeout}),
		model:       model,
		temperature: cfg.Temperature,
	}, nil
}

func (g *OllamaGenerator) Name() string {
	return "ollama:" + g.model
}

func (g *OllamaGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: g.model,
		Messages: []api.Message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": g.temperature,
		},
	}

	var content strings.Builder
	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if content.Len() == 0 {
		return "", fmt.Errorf("ollama returned empty response")
	}
	return content.String(), nil
}
