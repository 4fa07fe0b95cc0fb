package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements Client using the Google Gemini API. It is a
// completion-only backend: tool binding is not supported, so it can serve
// as the translation model but not as the agent reasoning model.
type GeminiProvider struct {
	config *Config
	client *genai.Client
}

// NewGeminiProvider creates a Gemini-backed completion provider.
func NewGeminiProvider(config *Config) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		config: config,
		client: client,
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Chat is not supported: Gemini is wired as a completion-only backend here.
func (p *GeminiProvider) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*Message, error) {
	if len(tools) > 0 {
		return nil, fmt.Errorf("gemini: %w", ErrToolsUnsupported)
	}

	// Without tools a chat collapses to a completion over the flattened log.
	var prompt strings.Builder
	for _, msg := range messages {
		fmt.Fprintf(&prompt, "%s: %s\n", msg.Role, msg.Content)
	}
	content, err := p.Complete(ctx, prompt.String())
	if err != nil {
		return nil, err
	}
	return &Message{Role: RoleAssistant, Content: content}, nil
}

// Complete sends a single prompt and returns the raw text reply.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.config.Model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no response from Gemini")
	}
	return text, nil
}
