package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wordforge/internal/llm"
)

// ErrTurnBudgetExceeded indicates that the model kept calling tools past
// the configured cycle ceiling and the turn was aborted.
var ErrTurnBudgetExceeded = errors.New("turn budget exceeded")

// errOrphanResult indicates a tool result whose call ID was never issued in
// this turn. It signals a dispatch bug, not a model mistake.
var errOrphanResult = errors.New("tool result references an unissued call")

// defaultMaxCycles bounds model invocations per user turn.
const defaultMaxCycles = 8

// Orchestrator runs the agent loop: invoke the model with the registered
// tool schemas, dispatch the tool calls it emits, feed the results back,
// and repeat until a response arrives with no tool calls.
type Orchestrator struct {
	client    llm.Client
	registry  *Registry
	maxCycles int
	logger    *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxCycles sets the ceiling on model invocations per turn.
func WithMaxCycles(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxCycles = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an orchestrator over a tool-capable model client and a
// registry.
func New(client llm.Client, registry *Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:    client,
		registry:  registry,
		maxCycles: defaultMaxCycles,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// TurnResult is the outcome of one completed user turn.
type TurnResult struct {
	Answer       string
	Cycles       int
	Slots        Slots
	Conversation *Conversation
}

// RunTurn processes one user utterance through to a terminal model answer.
// Every tool call issued in the turn receives exactly one result, appended
// in issue order, before the model is invoked again. Cancelling the context
// aborts pending dispatches without appending partial results.
func (o *Orchestrator) RunTurn(ctx context.Context, userText string) (*TurnResult, error) {
	if userText == "" {
		return nil, fmt.Errorf("user input is required")
	}

	conv := NewConversation(systemPrompt(), userText)

	for cycle := 1; cycle <= o.maxCycles; cycle++ {
		reply, err := o.client.Chat(ctx, conv.Messages(), o.registry.Specs())
		if err != nil {
			return nil, fmt.Errorf("model invocation failed: %w", err)
		}
		ensureCallIDs(reply)
		conv.Append(*reply)

		if len(reply.ToolCalls) == 0 {
			o.logger.Info("turn complete", zap.Int("cycles", cycle))
			return &TurnResult{
				Answer:       reply.Content,
				Cycles:       cycle,
				Slots:        conv.Slots(),
				Conversation: conv,
			}, nil
		}

		if cycle == o.maxCycles {
			break
		}

		o.logger.Info("dispatching tool calls",
			zap.Int("cycle", cycle),
			zap.Int("calls", len(reply.ToolCalls)))

		results, err := o.dispatchAll(ctx, reply.ToolCalls)
		if err != nil {
			return nil, err
		}
		if err := appendResults(conv, reply.ToolCalls, results); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: model still requesting tools after %d cycles", ErrTurnBudgetExceeded, o.maxCycles)
}

// dispatchAll executes the pending tool calls concurrently and returns the
// results indexed in issue order. A cancelled context discards the batch.
func (o *Orchestrator) dispatchAll(ctx context.Context, calls []llm.ToolCall) ([]ToolResult, error) {
	results := make([]ToolResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call llm.ToolCall) {
			defer wg.Done()
			results[i] = o.registry.Dispatch(ctx, call)
		}(i, call)
	}
	wg.Wait()

	// Incomplete results must not reach the ledger on cancellation.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("turn cancelled during tool dispatch: %w", err)
	}
	return results, nil
}

// appendResults writes one tool message per issued call, in issue order,
// verifying the ledger: every result must reference the call at its
// position.
func appendResults(conv *Conversation, calls []llm.ToolCall, results []ToolResult) error {
	if len(results) != len(calls) {
		return fmt.Errorf("%w: %d calls, %d results", errOrphanResult, len(calls), len(results))
	}
	for i, result := range results {
		if result.CallID != calls[i].ID {
			return fmt.Errorf("%w: got %q, want %q", errOrphanResult, result.CallID, calls[i].ID)
		}
		conv.Append(llm.Message{
			Role:       llm.RoleTool,
			ToolCallID: result.CallID,
			Name:       result.Name,
			Content:    result.Content,
		})
	}
	return nil
}

// ensureCallIDs synthesizes IDs for tool calls the backend left unlabelled,
// so the result ledger can always be matched up.
func ensureCallIDs(msg *llm.Message) {
	for i := range msg.ToolCalls {
		if msg.ToolCalls[i].ID == "" {
			msg.ToolCalls[i].ID = "call_" + uuid.NewString()
		}
	}
}

// systemPrompt describes the assistant role and the expected workflows.
func systemPrompt() string {
	return `You are a helpful language learning assistant. The user will give you a command.

Your job is to work out:
1. Which source language the user wants words from.
2. How many words they want.
3. Whether they want words of a specific difficulty (beginner, intermediate or advanced), or just random words.
4. Whether they want the words translated into a target language.
5. Whether they want the words saved as flashcards in a deck. Make sure a deck is created before cards are added, and call create_stack with the translated pairs.

Example workflows:

input: Get 20 random words in Spanish.
tools: sample_words

input: Get 10 hard words in German.
tools: sample_words_by_difficulty (difficulty: advanced)

input: Get 20 easy words in Spanish, translate them to English, and create a new deck with them called Spanish::Easy.
tools: sample_words_by_difficulty (difficulty: beginner) -> translate_words -> create_stack

When you have everything the user asked for, answer in plain language with the words and translations, and stop calling tools.`
}
