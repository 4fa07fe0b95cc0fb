package agent

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"wordforge/internal/llm"
	"wordforge/internal/testutil"
	"wordforge/internal/words"
)

func sampleRegistry(t *testing.T) *Registry {
	t.Helper()

	dataDir := t.TempDir()
	testutil.WriteCatalog(t, dataDir, "Spanish", testutil.SpanishCatalog())
	sampler := words.NewSampler(words.NewCatalogLoader(dataDir), rand.New(rand.NewSource(1)))

	registry := NewRegistry()
	if err := registry.Register(SampleTool(sampler)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := registry.Register(SampleByDifficultyTool(sampler)); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return registry
}

func TestRunTurn_SampleThenAnswer(t *testing.T) {
	client := &testutil.MockChatClient{
		Script: []llm.Message{
			{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{
					{ID: "call_1", Name: "sample_words", Arguments: `{"language": "Spanish", "n": 5}`},
				},
			},
			{Role: llm.RoleAssistant, Content: "Here are your 5 Spanish words."},
		},
	}

	orch := New(client, sampleRegistry(t))

	result, err := orch.RunTurn(context.Background(), "Get 5 words in Spanish")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}

	if result.Answer != "Here are your 5 Spanish words." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if result.Cycles != 2 {
		t.Errorf("Cycles = %d, want 2", result.Cycles)
	}
	if result.Slots.SourceLanguage != "Spanish" || result.Slots.WordCount != 5 {
		t.Errorf("Slots = %+v, want Spanish/5", result.Slots)
	}

	// system, user, assistant call, tool result, assistant answer
	messages := result.Conversation.Messages()
	if len(messages) != 5 {
		t.Fatalf("Expected 5 messages in the log, got %d", len(messages))
	}
	if messages[3].Role != llm.RoleTool || messages[3].ToolCallID != "call_1" {
		t.Errorf("messages[3] = %+v, want tool result for call_1", messages[3])
	}

	var payload words.SampleResult
	if err := json.Unmarshal([]byte(messages[3].Content), &payload); err != nil {
		t.Fatalf("Tool result is not a sample payload: %v", err)
	}
	if payload.Returned != 5 {
		t.Errorf("Sample returned %d words, want 5", payload.Returned)
	}
}

func TestRunTurn_NoToolsNeeded(t *testing.T) {
	client := &testutil.MockChatClient{
		Script: []llm.Message{
			{Role: llm.RoleAssistant, Content: "Hello! Ask me for words."},
		},
	}

	orch := New(client, NewRegistry())

	result, err := orch.RunTurn(context.Background(), "hi")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}
	if result.Cycles != 1 {
		t.Errorf("Cycles = %d, want 1", result.Cycles)
	}
	if len(client.ChatCalls) != 1 {
		t.Errorf("Expected 1 model call, got %d", len(client.ChatCalls))
	}
}

func TestRunTurn_TurnBudget(t *testing.T) {
	// The script's last message repeats, so the model never stops
	// requesting tools.
	client := &testutil.MockChatClient{
		Script: []llm.Message{
			{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{
					{ID: "call_x", Name: "sample_words", Arguments: `{"language": "Spanish", "n": 1}`},
				},
			},
		},
	}

	orch := New(client, sampleRegistry(t), WithMaxCycles(3))

	_, err := orch.RunTurn(context.Background(), "Get words forever")
	if !errors.Is(err, ErrTurnBudgetExceeded) {
		t.Fatalf("Expected ErrTurnBudgetExceeded, got %v", err)
	}

	// The ceiling caps model invocations exactly
	if len(client.ChatCalls) != 3 {
		t.Errorf("Expected exactly 3 model calls, got %d", len(client.ChatCalls))
	}
}

func TestRunTurn_MultipleCallsInOneCycle(t *testing.T) {
	client := &testutil.MockChatClient{
		Script: []llm.Message{
			{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{
					{ID: "call_a", Name: "sample_words", Arguments: `{"language": "Spanish", "n": 2}`},
					{ID: "call_b", Name: "sample_words_by_difficulty", Arguments: `{"language": "Spanish", "difficulty": "beginner", "n": 1}`},
				},
			},
			{Role: llm.RoleAssistant, Content: "done"},
		},
	}

	orch := New(client, sampleRegistry(t))

	result, err := orch.RunTurn(context.Background(), "Mix it up")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}

	// Results must land in issue order, one per call
	messages := result.Conversation.Messages()
	if len(messages) != 6 {
		t.Fatalf("Expected 6 messages, got %d", len(messages))
	}
	if messages[3].ToolCallID != "call_a" {
		t.Errorf("messages[3].ToolCallID = %q, want call_a", messages[3].ToolCallID)
	}
	if messages[4].ToolCallID != "call_b" {
		t.Errorf("messages[4].ToolCallID = %q, want call_b", messages[4].ToolCallID)
	}
}

func TestRunTurn_UnknownToolFeedsErrorBack(t *testing.T) {
	client := &testutil.MockChatClient{
		Script: []llm.Message{
			{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{
					{ID: "call_1", Name: "summon_dragon", Arguments: "{}"},
				},
			},
			{Role: llm.RoleAssistant, Content: "Sorry, I cannot do that."},
		},
	}

	orch := New(client, sampleRegistry(t))

	result, err := orch.RunTurn(context.Background(), "Summon a dragon")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}

	messages := result.Conversation.Messages()
	if !strings.Contains(messages[3].Content, "unknown tool") {
		t.Errorf("Tool result %q should carry an unknown-tool error payload", messages[3].Content)
	}
	if result.Answer != "Sorry, I cannot do that." {
		t.Errorf("Answer = %q", result.Answer)
	}
}

func TestRunTurn_SynthesizesCallIDs(t *testing.T) {
	client := &testutil.MockChatClient{
		Script: []llm.Message{
			{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{
					{Name: "sample_words", Arguments: `{"language": "Spanish", "n": 1}`},
				},
			},
			{Role: llm.RoleAssistant, Content: "done"},
		},
	}

	orch := New(client, sampleRegistry(t))

	result, err := orch.RunTurn(context.Background(), "Get a word")
	if err != nil {
		t.Fatalf("RunTurn failed: %v", err)
	}

	messages := result.Conversation.Messages()
	if !strings.HasPrefix(messages[3].ToolCallID, "call_") {
		t.Errorf("ToolCallID = %q, want a synthesized call_ ID", messages[3].ToolCallID)
	}
	if messages[2].ToolCalls[0].ID != messages[3].ToolCallID {
		t.Error("Synthesized ID on the call does not match the result")
	}
}

func TestRunTurn_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	registry := NewRegistry()
	var once sync.Once
	err := registry.Register(&Tool{
		Name:       "slow",
		Parameters: map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			once.Do(cancel)
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	client := &testutil.MockChatClient{
		Script: []llm.Message{
			{
				Role: llm.RoleAssistant,
				ToolCalls: []llm.ToolCall{
					{ID: "call_1", Name: "slow", Arguments: "{}"},
				},
			},
		},
	}

	orch := New(client, registry)

	_, err = orch.RunTurn(ctx, "Do something slow")
	if err == nil {
		t.Fatal("Expected error from cancelled turn")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in the chain, got %v", err)
	}
}

func TestRunTurn_EmptyInput(t *testing.T) {
	orch := New(&testutil.MockChatClient{}, NewRegistry())

	if _, err := orch.RunTurn(context.Background(), ""); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestRunTurn_ModelFailure(t *testing.T) {
	client := &testutil.MockChatClient{Err: errors.New("rate limited")}
	orch := New(client, NewRegistry())

	if _, err := orch.RunTurn(context.Background(), "hello"); err == nil {
		t.Error("Expected error when the model is unreachable")
	}
}
