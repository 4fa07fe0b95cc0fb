package anki

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_CreateDeck(t *testing.T) {
	var got request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(`{"result": 1234567890, "error": null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if err := client.CreateDeck(context.Background(), "Spanish::Basics"); err != nil {
		t.Fatalf("CreateDeck failed: %v", err)
	}

	if got.Action != "createDeck" {
		t.Errorf("Action = %q, want createDeck", got.Action)
	}
	if got.Version != 6 {
		t.Errorf("Version = %d, want 6", got.Version)
	}
}

func TestClient_AddNote(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		body = string(buf)
		w.Write([]byte(`{"result": 1, "error": null}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	if err := client.AddNote(context.Background(), "Spanish", "casa", "house"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}

	for _, want := range []string{`"addNote"`, `"deckName":"Spanish"`, `"Front":"casa"`, `"Back":"house"`, `"modelName":"Basic"`} {
		if !strings.Contains(body, want) {
			t.Errorf("Request body missing %s: %s", want, body)
		}
	}
}

func TestClient_StoreError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": null, "error": "cannot create note because it is a duplicate"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	err := client.AddNote(context.Background(), "Spanish", "casa", "house")
	if err == nil {
		t.Fatal("Expected error from store envelope")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("Error %q does not carry the store message", err)
	}
	// An application-level error must not mark the store as unavailable
	if errors.Is(err, ErrStoreUnavailable) {
		t.Error("Envelope error should not be ErrStoreUnavailable")
	}
}

func TestClient_StoreDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, time.Second)

	err := client.CreateDeck(context.Background(), "Spanish")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestClient_BreakerTrips(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	// Three consecutive transport failures open the breaker
	for i := 0; i < 3; i++ {
		if err := client.AddNote(context.Background(), "Spanish", "casa", "house"); !errors.Is(err, ErrStoreUnavailable) {
			t.Fatalf("Call %d: expected ErrStoreUnavailable, got %v", i+1, err)
		}
	}
	if hits != 3 {
		t.Fatalf("Expected 3 requests before the breaker opens, got %d", hits)
	}

	// Once open, calls fail fast without reaching the server
	if err := client.AddNote(context.Background(), "Spanish", "perro", "dog"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Expected ErrStoreUnavailable from open breaker, got %v", err)
	}
	if hits != 3 {
		t.Errorf("Open breaker still reached the server: %d requests", hits)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("", 0)
	if client.url != DefaultStoreURL {
		t.Errorf("url = %q, want %q", client.url, DefaultStoreURL)
	}
	if client.httpClient.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", client.httpClient.Timeout)
	}
}
