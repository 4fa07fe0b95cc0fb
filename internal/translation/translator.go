package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"wordforge/internal/llm"
)

// ErrTranslationUnavailable indicates that the completion capability could
// not be reached after retries. The accompanying batch still carries
// identity translations so the caller can degrade instead of aborting.
var ErrTranslationUnavailable = errors.New("translation capability unavailable")

// Pair maps one source word to its translation. Target equals Source when
// no translation was recoverable (identity fallback).
type Pair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// reply is the structured shape the model is asked to return.
type reply struct {
	Translations []Pair `json:"translations"`
}

const (
	defaultRetries    = 2
	defaultRetryDelay = 500 * time.Millisecond
)

// Translator translates word batches via a completion model.
type Translator struct {
	client     llm.Client
	retries    int
	retryDelay time.Duration
}

// NewTranslator creates a translator over the given completion client.
func NewTranslator(client llm.Client) *Translator {
	return &Translator{
		client:     client,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}
}

// Translate translates words from sourceLanguage to targetLanguage. The
// returned batch always has the same length and order as the input. If the
// completion capability is unreachable after retries, the identity batch is
// returned together with ErrTranslationUnavailable; malformed replies never
// produce an error, they degrade per word to the identity fallback.
func (t *Translator) Translate(ctx context.Context, words []string, sourceLanguage, targetLanguage string) ([]Pair, error) {
	if len(words) == 0 {
		return []Pair{}, nil
	}

	prompt, err := buildPrompt(words, sourceLanguage, targetLanguage)
	if err != nil {
		return IdentityBatch(words), fmt.Errorf("failed to build translation prompt: %w", err)
	}

	text, err := t.complete(ctx, prompt)
	if err != nil {
		return IdentityBatch(words), fmt.Errorf("%w: %v", ErrTranslationUnavailable, err)
	}

	return Reconcile(words, parseReply(text)), nil
}

// complete calls the model, retrying transport failures a bounded number of
// times with a short delay.
func (t *Translator) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= t.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(t.retryDelay):
			}
		}

		text, err := t.client.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// buildPrompt asks for exactly len(words) translations in a fixed JSON shape.
func buildPrompt(words []string, sourceLanguage, targetLanguage string) (string, error) {
	encoded, err := json.Marshal(words)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"You are a precise translation engine.\n"+
			"Translate each of the following %d words from %s to %s.\n"+
			"Return ONLY valid JSON with this exact structure:\n"+
			`{"translations": [{"source": "<original>", "target": "<translated>"}, ...]}`+"\n"+
			"No explanations, no extra fields, no markdown.\n"+
			"Words: %s",
		len(words), sourceLanguage, targetLanguage, encoded), nil
}

// parseReply extracts a source-to-target lookup from a model reply. It tries
// a strict parse of the whole reply first, then the substring from the first
// '{' to the last '}'. An unparseable reply yields an empty lookup.
func parseReply(text string) map[string]string {
	var parsed reply
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return map[string]string{}
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
			return map[string]string{}
		}
	}

	lookup := make(map[string]string, len(parsed.Translations))
	for _, pair := range parsed.Translations {
		if pair.Source != "" {
			lookup[pair.Source] = pair.Target
		}
	}
	return lookup
}

// Reconcile rebuilds an ordered batch from the model's lookup: exact match
// first, then the capitalized form, then the identity fallback. The result
// always matches the input in length and order.
func Reconcile(words []string, lookup map[string]string) []Pair {
	pairs := make([]Pair, 0, len(words))
	for _, word := range words {
		target, ok := lookup[word]
		if !ok || target == "" {
			target, ok = lookup[capitalize(word)]
		}
		if !ok || target == "" {
			target = word
		}
		pairs = append(pairs, Pair{Source: word, Target: target})
	}
	return pairs
}

// IdentityBatch maps every word to itself, signalling "could not translate"
// without raising.
func IdentityBatch(words []string) []Pair {
	pairs := make([]Pair, 0, len(words))
	for _, word := range words {
		pairs = append(pairs, Pair{Source: word, Target: word})
	}
	return pairs
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	for i := 1; i < len(runes); i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}
