package testutil

import (
	"context"
	"fmt"
	"sync"

	"wordforge/internal/llm"
)

// MockChatClient is a scripted llm.Client. Each Chat call consumes the next
// scripted message; when the script runs out the last message repeats, so a
// model that "never stops calling tools" is a one-line script.
type MockChatClient struct {
	Script    []llm.Message
	Completes map[string]string
	Err       error

	ChatCalls     [][]llm.Message
	CompleteCalls []string
}

// Chat returns the next scripted message.
func (m *MockChatClient) Chat(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (*llm.Message, error) {
	m.ChatCalls = append(m.ChatCalls, messages)

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Script) == 0 {
		return nil, fmt.Errorf("mock chat client has no script")
	}

	index := len(m.ChatCalls) - 1
	if index >= len(m.Script) {
		index = len(m.Script) - 1
	}
	msg := m.Script[index]
	return &msg, nil
}

// Complete returns the scripted reply for the prompt, or a default.
func (m *MockChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	m.CompleteCalls = append(m.CompleteCalls, prompt)

	if m.Err != nil {
		return "", m.Err
	}
	if reply, ok := m.Completes[prompt]; ok {
		return reply, nil
	}
	return "mock completion", nil
}

// Name returns the provider name.
func (m *MockChatClient) Name() string {
	return "mock"
}

// MockCompleter is a completion-only llm.Client whose Complete returns a
// fixed reply, or errors for the first FailCount calls.
type MockCompleter struct {
	Reply     string
	FailCount int

	mu    sync.Mutex
	Calls int
}

// Chat is unsupported on the completion-only mock.
func (m *MockCompleter) Chat(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (*llm.Message, error) {
	return nil, llm.ErrToolsUnsupported
}

// Complete returns the fixed reply after FailCount failures.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if m.Calls <= m.FailCount {
		return "", fmt.Errorf("mock transport failure %d", m.Calls)
	}
	return m.Reply, nil
}

// Name returns the provider name.
func (m *MockCompleter) Name() string {
	return "mock-completer"
}

// MockDeckStore is an in-memory anki.DeckStore with scriptable failures.
type MockDeckStore struct {
	CreateDeckErr error
	AddNoteErrs   map[string]error // keyed by card front

	mu    sync.Mutex
	Decks []string
	Notes map[string][][2]string
	Calls []string
}

// CreateDeck records the deck, or fails if scripted to.
func (m *MockDeckStore) CreateDeck(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, fmt.Sprintf("createDeck %s", name))
	if m.CreateDeckErr != nil {
		return m.CreateDeckErr
	}

	if m.Notes == nil {
		m.Notes = make(map[string][][2]string)
	}
	if _, ok := m.Notes[name]; !ok {
		m.Decks = append(m.Decks, name)
		m.Notes[name] = nil
	}
	return nil
}

// AddNote records the note, or fails if scripted to for this front.
func (m *MockDeckStore) AddNote(ctx context.Context, deck, front, back string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, fmt.Sprintf("addNote %s %s", deck, front))
	if err, ok := m.AddNoteErrs[front]; ok {
		return err
	}

	if m.Notes == nil {
		m.Notes = make(map[string][][2]string)
	}
	m.Notes[deck] = append(m.Notes[deck], [2]string{front, back})
	return nil
}
