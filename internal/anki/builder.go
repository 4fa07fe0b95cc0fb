package anki

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// StackSummary reports the outcome of one CreateStack call.
type StackSummary struct {
	DeckName  string   `json:"deck_name"`
	Requested int      `json:"requested"`
	Succeeded int      `json:"succeeded"`
	Errors    []string `json:"errors,omitempty"`
}

// Builder creates decks and fills them with cards. Deck creation is a
// precondition and fails fast; card insertion is best effort across the
// batch, with per-card errors collected in the summary.
type Builder struct {
	store  DeckStore
	logger *zap.Logger
}

// NewBuilder creates a deck builder over the given store.
func NewBuilder(store DeckStore, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		store:  store,
		logger: logger,
	}
}

// CreateStack creates the named deck, then inserts the cards one at a time.
// A failed insertion is recorded in the summary and does not abort the
// batch. An unreachable store aborts before any insertion is attempted.
func (b *Builder) CreateStack(ctx context.Context, deckName string, cards []CardInput) (*StackSummary, error) {
	if deckName == "" {
		return nil, fmt.Errorf("deck name is required")
	}

	if err := b.store.CreateDeck(ctx, deckName); err != nil {
		return nil, err
	}
	b.logger.Info("deck ready", zap.String("deck", deckName), zap.Int("cards", len(cards)))

	summary := &StackSummary{
		DeckName:  deckName,
		Requested: len(cards),
	}

	for i, card := range cards {
		front := card.DisplayFront()
		back := card.DisplayBack()

		if front == "" {
			summary.Errors = append(summary.Errors, fmt.Sprintf("card %d: empty front", i+1))
			continue
		}

		if err := b.store.AddNote(ctx, deckName, front, back); err != nil {
			b.logger.Warn("card insertion failed",
				zap.String("deck", deckName),
				zap.String("front", front),
				zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("card %d (%s): %v", i+1, front, err))
			continue
		}
		summary.Succeeded++
	}

	return summary, nil
}
