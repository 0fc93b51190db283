// Package llm wraps a single call to the Gemini text-generation API. It owns
// the credential check and error tagging; it does not retry, back off, or
// stream.
package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/genai"

	"growthkit/internal/apperr"
	"growthkit/internal/config"
	"growthkit/internal/prompts"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Client is a configured Gemini client.
type Client struct {
	modelName   string
	timeout     time.Duration
	maxTokens   int32
	temperature float32
	gClient     *genai.Client
}

// NewClient creates a Gemini client from configuration. The API key is taken
// from cfg or the GEMINI_API_KEY environment variable; if neither is set the
// constructor fails fast with apperr.ErrNotConfigured so no record is created
// and no network I/O is attempted on behalf of an unconfigurable provider.
func NewClient(ctx context.Context, cfg config.Gemini) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY or ai.gemini.api_key", apperr.ErrNotConfigured)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultModel
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName:   modelName,
		timeout:     cfg.Timeout,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		gClient:     gClient,
	}, nil
}

// Model returns the model name this client generates with.
func (c *Client) Model() string {
	return c.modelName
}

// Generate performs one synchronous generation call. The per-prompt options
// pass through, bounded by the configured token ceiling; any failure is
// wrapped with apperr.ErrProvider.
func (c *Client) Generate(ctx context.Context, prompt, systemPrompt string, opts prompts.Options) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  genai.RoleUser,
	}}

	maxTokens := opts.MaxOutputTokens
	if c.maxTokens > 0 && (maxTokens == 0 || maxTokens > c.maxTokens) {
		maxTokens = c.maxTokens
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: maxTokens,
		Temperature:     genai.Ptr(temperature),
	}
	if systemPrompt != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, genCfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrProvider, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response from model", apperr.ErrProvider)
	}

	return text, nil
}
