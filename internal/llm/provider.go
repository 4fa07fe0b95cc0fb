package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Message roles used in conversations.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry in a conversation log.
type Message struct {
	Role    string
	Content string

	// ToolCalls is set on assistant messages that request tool execution.
	ToolCalls []ToolCall

	// ToolCallID and Name are set on tool messages carrying a result back.
	ToolCallID string
	Name       string
}

// ToolCall is a structured request from the model naming a capability and
// its arguments. Arguments is the raw JSON object emitted by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolSpec declares a callable capability to the model: a name, a
// description, and a JSON schema for the arguments object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ErrToolsUnsupported is returned by providers that cannot bind tool
// schemas to a chat request.
var ErrToolsUnsupported = errors.New("provider does not support tool binding")

// Client is the interface to a text-completion capability.
type Client interface {
	// Chat sends a conversation with bound tool schemas and returns the
	// model's next message, which may carry tool calls.
	Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*Message, error)

	// Complete sends a single prompt and returns the raw text reply.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name.
	Name() string
}

// Config holds common configuration for completion providers.
type Config struct {
	Provider    string // Provider name: "openai" or "gemini"
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration // Per-request timeout for remote calls

	// Provider credentials
	OpenAIKey string
	GeminiKey string
}

// DefaultConfig returns default provider configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		Timeout:     60 * time.Second,
	}
}

// NewClient creates the appropriate completion provider based on
// configuration.
func NewClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config), nil

	case "gemini":
		if config.GeminiKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(config)

	default:
		return nil, fmt.Errorf("unknown completion provider: %s", config.Provider)
	}
}
