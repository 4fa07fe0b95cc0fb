package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wordforge/internal/llm"
)

// ErrUnknownTool indicates a model-issued call naming an unregistered tool.
var ErrUnknownTool = errors.New("unknown tool")

// ToolResult carries one tool outcome back to the model. Content is a JSON
// payload; failed calls carry {"error": "..."} so the model can
// self-correct instead of the turn aborting.
type ToolResult struct {
	CallID  string
	Name    string
	Content string
}

// Registry is the closed set of tools the model may call, looked up by name.
type Registry struct {
	tools map[string]*Tool
	order []string
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Tool),
	}
}

// Register adds a tool. Registering the same name twice is an error.
func (r *Registry) Register(tool *Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %q already registered", tool.Name)
	}
	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	return nil
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Specs returns the schema declarations of all tools in registration order.
func (r *Registry) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Dispatch executes one model-issued tool call. Unknown tool names, invalid
// arguments, and handler failures all produce an error payload inside the
// result rather than an error return.
func (r *Registry) Dispatch(ctx context.Context, call llm.ToolCall) ToolResult {
	tool, ok := r.Get(call.Name)
	if !ok {
		return errorResult(call, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name))
	}

	args := make(map[string]any)
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return errorResult(call, fmt.Errorf("malformed arguments: %v", err))
		}
	}

	if err := validateArgs(tool, args); err != nil {
		return errorResult(call, err)
	}

	payload, err := tool.Handler(ctx, args)
	if err != nil {
		return errorResult(call, err)
	}

	content, err := json.Marshal(payload)
	if err != nil {
		return errorResult(call, fmt.Errorf("failed to encode result: %v", err))
	}

	return ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: string(content),
	}
}

// errorResult wraps a tool failure as a result payload.
func errorResult(call llm.ToolCall, err error) ToolResult {
	content, _ := json.Marshal(map[string]string{"error": err.Error()})
	return ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: string(content),
	}
}
