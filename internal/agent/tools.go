package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wordforge/internal/anki"
	"wordforge/internal/translation"
	"wordforge/internal/words"
)

// RegisterDefaultTools wires the word sampler, translator and deck builder
// into a registry as the four standard tools.
func RegisterDefaultTools(r *Registry, sampler *words.Sampler, translator *translation.Translator, builder *anki.Builder) error {
	tools := []*Tool{
		SampleTool(sampler),
		SampleByDifficultyTool(sampler),
		TranslateTool(translator),
		CreateStackTool(builder),
	}
	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

// SampleTool exposes random word sampling.
func SampleTool(sampler *words.Sampler) *Tool {
	return &Tool{
		Name:        "sample_words",
		Description: "Get a number of random words from the word list for a given language.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"language": map[string]any{
					"type":        "string",
					"description": "The language to draw words from, e.g. Spanish.",
				},
				"n": map[string]any{
					"type":        "integer",
					"description": "The number of words to draw.",
				},
			},
			"required": []string{"language", "n"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return sampler.Sample(stringArg(args, "language"), intArg(args, "n"))
		},
	}
}

// SampleByDifficultyTool exposes difficulty-filtered word sampling.
func SampleByDifficultyTool(sampler *words.Sampler) *Tool {
	return &Tool{
		Name:        "sample_words_by_difficulty",
		Description: "Get a number of random words of a given difficulty level from the word list for a given language. Difficulty must be beginner, intermediate or advanced.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"language": map[string]any{
					"type":        "string",
					"description": "The language to draw words from, e.g. German.",
				},
				"difficulty": map[string]any{
					"type":        "string",
					"description": "One of beginner, intermediate or advanced.",
				},
				"n": map[string]any{
					"type":        "integer",
					"description": "The number of words to draw.",
				},
			},
			"required": []string{"language", "difficulty", "n"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			return sampler.SampleByDifficulty(
				stringArg(args, "language"),
				stringArg(args, "difficulty"),
				intArg(args, "n"))
		},
	}
}

// translatePayload is the translate_words result shape.
type translatePayload struct {
	Translations []translation.Pair `json:"translations"`
	Degraded     bool               `json:"degraded,omitempty"`
	Note         string             `json:"note,omitempty"`
}

// TranslateTool exposes batch translation. An unreachable translation model
// degrades to identity translations instead of failing the call.
func TranslateTool(translator *translation.Translator) *Tool {
	return &Tool{
		Name:        "translate_words",
		Description: "Translate a list of words from a source language to a target language. Translations are returned in the same order as the input words.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"words": map[string]any{
					"type":        "array",
					"description": "The words to translate, in the source language.",
					"items":       map[string]any{"type": "string"},
				},
				"source_language": map[string]any{
					"type":        "string",
					"description": "The language of the input words.",
				},
				"target_language": map[string]any{
					"type":        "string",
					"description": "The language to translate into.",
				},
			},
			"required": []string{"words", "source_language", "target_language"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			wordList, err := stringSliceArg(args, "words")
			if err != nil {
				return nil, err
			}

			pairs, err := translator.Translate(ctx, wordList,
				stringArg(args, "source_language"),
				stringArg(args, "target_language"))
			if err != nil {
				if errors.Is(err, translation.ErrTranslationUnavailable) {
					return translatePayload{
						Translations: pairs,
						Degraded:     true,
						Note:         "translation model unreachable; words returned untranslated",
					}, nil
				}
				return nil, err
			}
			return translatePayload{Translations: pairs}, nil
		},
	}
}

// CreateStackTool exposes deck creation with batch card insertion.
func CreateStackTool(builder *anki.Builder) *Tool {
	return &Tool{
		Name:        "create_stack",
		Description: "Create a flashcard deck with the given name and add one card per translation pair. Deck names may be hierarchical, e.g. Spanish::Easy.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"deck_name": map[string]any{
					"type":        "string",
					"description": "The deck name, segments separated by ::",
				},
				"cards": map[string]any{
					"type":        "array",
					"description": "The cards to add, each with source/target (or front/back) text.",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"source": map[string]any{"type": "string"},
							"target": map[string]any{"type": "string"},
							"front":  map[string]any{"type": "string"},
							"back":   map[string]any{"type": "string"},
						},
					},
				},
			},
			"required": []string{"deck_name", "cards"},
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			cards, err := cardsArg(args, "cards")
			if err != nil {
				return nil, err
			}
			return builder.CreateStack(ctx, stringArg(args, "deck_name"), cards)
		},
	}
}

// stringArg reads a string argument, returning "" when absent.
func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

// intArg reads an integer argument decoded from JSON, returning 0 when
// absent.
func intArg(args map[string]any, key string) int {
	value, _ := args[key].(float64)
	return int(value)
}

// stringSliceArg reads an array-of-strings argument.
func stringSliceArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array of strings", key)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q must contain only strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// cardsArg reads an array-of-cards argument via a JSON round trip so both
// historical card shapes decode uniformly.
func cardsArg(args map[string]any, key string) ([]anki.CardInput, error) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an array of card objects", key)
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("argument %q is not encodable: %v", key, err)
	}

	var cards []anki.CardInput
	if err := json.Unmarshal(encoded, &cards); err != nil {
		return nil, fmt.Errorf("argument %q has malformed cards: %v", key, err)
	}
	return cards, nil
}
