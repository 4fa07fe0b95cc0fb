package agent

import (
	"regexp"
	"strconv"
	"strings"

	"wordforge/internal/llm"
)

// Slots are advisory parameters derived from the conversation: the model's
// own tool-call decisions stay authoritative, so slots never gate dispatch.
// They are recomputed from the log on demand, not independently mutated.
type Slots struct {
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
	WordCount      int    `json:"word_count,omitempty"`
	Difficulty     string `json:"difficulty,omitempty"`
}

// Conversation is the append-only message log for one user turn.
type Conversation struct {
	messages []llm.Message
}

// NewConversation starts a turn with the system prompt and the user text.
func NewConversation(systemPrompt, userText string) *Conversation {
	return &Conversation{
		messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: userText},
		},
	}
}

// Append adds a message to the log.
func (c *Conversation) Append(msg llm.Message) {
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []llm.Message {
	out := make([]llm.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the log.
func (c *Conversation) Len() int {
	return len(c.messages)
}

var (
	countPattern      = regexp.MustCompile(`\b(\d+)\b`)
	sourcePattern     = regexp.MustCompile(`(?i)\b(?:words?\s+)?in\s+([A-Z][a-zA-Z]+)`)
	targetPattern     = regexp.MustCompile(`(?i)\b(?:translate(?:d)?\s+(?:them\s+)?(?:in)?to|into)\s+([A-Z][a-zA-Z]+)`)
	difficultyPattern = regexp.MustCompile(`(?i)\b(easy|beginner|medium|intermediate|hard|difficult|advanced)\b`)
)

// difficultyLevels maps colloquial difficulty words to catalog levels.
var difficultyLevels = map[string]string{
	"easy":         "beginner",
	"beginner":     "beginner",
	"medium":       "intermediate",
	"intermediate": "intermediate",
	"hard":         "advanced",
	"difficult":    "advanced",
	"advanced":     "advanced",
}

// Slots derives the advisory slot values from the user messages in the log.
func (c *Conversation) Slots() Slots {
	var slots Slots
	for _, msg := range c.messages {
		if msg.Role != llm.RoleUser {
			continue
		}

		if slots.WordCount == 0 {
			if m := countPattern.FindStringSubmatch(msg.Content); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					slots.WordCount = n
				}
			}
		}
		if slots.SourceLanguage == "" {
			if m := sourcePattern.FindStringSubmatch(msg.Content); m != nil {
				slots.SourceLanguage = m[1]
			}
		}
		if slots.TargetLanguage == "" {
			if m := targetPattern.FindStringSubmatch(msg.Content); m != nil {
				slots.TargetLanguage = m[1]
			}
		}
		if slots.Difficulty == "" {
			if m := difficultyPattern.FindStringSubmatch(msg.Content); m != nil {
				slots.Difficulty = difficultyLevels[strings.ToLower(m[1])]
			}
		}
	}
	return slots
}
