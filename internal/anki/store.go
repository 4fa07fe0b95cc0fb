package anki

import (
	"context"
	"errors"
)

// ErrStoreUnavailable indicates that the deck store could not be reached.
var ErrStoreUnavailable = errors.New("deck store unavailable")

// DeckStore is the contract with a flashcard store: create a deck, then add
// notes to it. CreateDeck is idempotent; creating an existing deck must not
// error.
type DeckStore interface {
	CreateDeck(ctx context.Context, name string) error
	AddNote(ctx context.Context, deck, front, back string) error
}

// CardInput is one card to persist. Two historical shapes are accepted:
// source/target (translation pairs) and front/back (plain cards). The
// source/target fields win when both are present.
type CardInput struct {
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
	Front  string `json:"front,omitempty"`
	Back   string `json:"back,omitempty"`
}

// DisplayFront returns the card front: Source if present, else Front.
func (c CardInput) DisplayFront() string {
	if c.Source != "" {
		return c.Source
	}
	return c.Front
}

// DisplayBack returns the card back: Target if present, else Back.
func (c CardInput) DisplayBack() string {
	if c.Target != "" {
		return c.Target
	}
	return c.Back
}
