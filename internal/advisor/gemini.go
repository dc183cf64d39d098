package advisor

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"kukacrm/internal/logging"
)

// =============================================================================
// GOOGLE GENAI MODEL
// =============================================================================

// Model generates text for a prompt on a named Gemini model.
type Model interface {
	Generate(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (string, error)
}

// GeminiModel calls the Gemini API through google.golang.org/genai.
type GeminiModel struct {
	client  *genai.Client
	timeout time.Duration
}

// NewGeminiModel creates a Gemini client for apiKey.
func NewGeminiModel(ctx context.Context, apiKey string, timeout time.Duration) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiModel{client: client, timeout: timeout}, nil
}

// Generate implements Model.
func (g *GeminiModel) Generate(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	timer := logging.StartTimer(logging.CategoryAPI, "Generate "+model)
	defer timer.StopWithThreshold(30 * time.Second)

	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini %s request failed: %w", model, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini %s returned no text", model)
	}
	return text, nil
}
