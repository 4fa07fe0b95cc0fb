package anki

import (
	"context"
	"errors"
	"testing"

	"wordforge/internal/testutil"
)

func TestCreateStack(t *testing.T) {
	store := &testutil.MockDeckStore{}
	builder := NewBuilder(store, nil)

	cards := []CardInput{
		{Source: "casa", Target: "house"},
		{Source: "perro", Target: "dog"},
	}

	summary, err := builder.CreateStack(context.Background(), "Spanish::Basics", cards)
	if err != nil {
		t.Fatalf("CreateStack failed: %v", err)
	}

	if summary.DeckName != "Spanish::Basics" {
		t.Errorf("DeckName = %q, want Spanish::Basics", summary.DeckName)
	}
	if summary.Requested != 2 || summary.Succeeded != 2 {
		t.Errorf("Got requested=%d succeeded=%d, want 2/2", summary.Requested, summary.Succeeded)
	}
	if len(summary.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", summary.Errors)
	}

	notes := store.Notes["Spanish::Basics"]
	if len(notes) != 2 {
		t.Fatalf("Expected 2 stored notes, got %d", len(notes))
	}
	if notes[0] != [2]string{"casa", "house"} {
		t.Errorf("notes[0] = %v, want [casa house]", notes[0])
	}
}

func TestCreateStack_PartialFailure(t *testing.T) {
	store := &testutil.MockDeckStore{
		AddNoteErrs: map[string]error{"perro": errors.New("duplicate note")},
	}
	builder := NewBuilder(store, nil)

	cards := []CardInput{
		{Source: "casa", Target: "house"},
		{Source: "perro", Target: "dog"},
		{Source: "gato", Target: "cat"},
	}

	summary, err := builder.CreateStack(context.Background(), "Spanish", cards)
	if err != nil {
		t.Fatalf("CreateStack failed: %v", err)
	}

	if summary.Requested != 3 {
		t.Errorf("Requested = %d, want 3", summary.Requested)
	}
	if summary.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", summary.Succeeded)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %v", summary.Errors)
	}
}

func TestCreateStack_StoreUnavailable(t *testing.T) {
	store := &testutil.MockDeckStore{CreateDeckErr: ErrStoreUnavailable}
	builder := NewBuilder(store, nil)

	_, err := builder.CreateStack(context.Background(), "Spanish", []CardInput{{Source: "casa"}})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}

	// Deck creation failed, so no insertion may have been attempted
	for _, call := range store.Calls {
		if call != "createDeck Spanish" {
			t.Errorf("Unexpected store call after failed deck creation: %s", call)
		}
	}
}

func TestCreateStack_EmptyDeckName(t *testing.T) {
	builder := NewBuilder(&testutil.MockDeckStore{}, nil)

	if _, err := builder.CreateStack(context.Background(), "", nil); err == nil {
		t.Error("Expected error for empty deck name")
	}
}

func TestCreateStack_EmptyFrontSkipped(t *testing.T) {
	store := &testutil.MockDeckStore{}
	builder := NewBuilder(store, nil)

	cards := []CardInput{
		{Source: "", Target: "house"},
		{Source: "perro", Target: "dog"},
	}

	summary, err := builder.CreateStack(context.Background(), "Spanish", cards)
	if err != nil {
		t.Fatalf("CreateStack failed: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Errorf("Succeeded = %d, want 1", summary.Succeeded)
	}
	if len(summary.Errors) != 1 {
		t.Errorf("Expected 1 error for the empty front, got %v", summary.Errors)
	}
}

func TestCardInput_FieldShapes(t *testing.T) {
	tests := []struct {
		name  string
		card  CardInput
		front string
		back  string
	}{
		{"source and target", CardInput{Source: "casa", Target: "house"}, "casa", "house"},
		{"front and back", CardInput{Front: "casa", Back: "house"}, "casa", "house"},
		{"source wins over front", CardInput{Source: "casa", Front: "ignored", Target: "house", Back: "ignored"}, "casa", "house"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.card.DisplayFront(); got != tt.front {
				t.Errorf("DisplayFront() = %q, want %q", got, tt.front)
			}
			if got := tt.card.DisplayBack(); got != tt.back {
				t.Errorf("DisplayBack() = %q, want %q", got, tt.back)
			}
		})
	}
}
