package insight

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for summaries.
const DefaultModelName = "gemini-2.0-flash"

// Generator produces text for a prompt.
// This interface enables mocking of the external text-generation service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator is the Generator backed by the Gemini API.
// The client is created on first use; an empty APIKey lets the SDK fall back
// to GEMINI_API_KEY / GOOGLE_API_KEY from the environment.
type GeminiGenerator struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiGenerator creates a generator for the given model.
func NewGeminiGenerator(apiKey, model string) *GeminiGenerator {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiGenerator{apiKey: apiKey, model: model}
}

// Generate sends prompt to the model and returns its text verbatim.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := g.genaiClient(ctx)
	if err != nil {
		return "", err
	}

	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Generate: generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("Generate: %w", ErrEmptyResponse)
	}
	return text, nil
}

func (g *GeminiGenerator) genaiClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return g.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("Generate: create genai client: %w", err)
	}
	g.client = client
	return client, nil
}
