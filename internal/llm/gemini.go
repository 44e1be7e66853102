package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini generates text with Google's Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// GeminiOption configures the Gemini generator.
type GeminiOption func(*Gemini)

// WithGeminiModel sets the model.
func WithGeminiModel(model string) GeminiOption {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) GeminiOption {
	return func(g *Gemini) { g.temperature = t }
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	g := &Gemini{client: client, model: DefaultGeminiModel, temperature: 0.3}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string { return g.model }

// Generate sends one user turn with an optional system instruction.
func (g *Gemini) Generate(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{genai.NewPartFromText(prompt)}},
	}, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProviderDown, err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
