package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Client using the OpenAI chat completions API.
// It is the only provider that supports binding tool schemas.
type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

// NewOpenAIProvider creates an OpenAI-backed completion provider.
func NewOpenAIProvider(config *Config) *OpenAIProvider {
	return &OpenAIProvider{
		config: config,
		client: openai.NewClient(config.OpenAIKey),
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Chat sends the conversation with the given tool schemas bound and returns
// the model's next message.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (*Message, error) {
	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    toOpenAIMessages(messages),
		Temperature: p.config.Temperature,
	}
	if p.config.MaxTokens > 0 {
		req.MaxTokens = p.config.MaxTokens
	}
	for _, tool := range tools {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return fromOpenAIMessage(resp.Choices[0].Message), nil
}

// Complete sends a single user prompt and returns the raw text reply.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	reply, err := p.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply.Content), nil
}

// toOpenAIMessages converts neutral messages to the OpenAI wire shape.
func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		converted = append(converted, out)
	}
	return converted
}

// fromOpenAIMessage converts an OpenAI response message to the neutral shape.
func fromOpenAIMessage(msg openai.ChatCompletionMessage) *Message {
	out := &Message{
		Role:    msg.Role,
		Content: msg.Content,
	}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return out
}
