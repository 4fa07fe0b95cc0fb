package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultStoreURL is the standard AnkiConnect listen address.
const DefaultStoreURL = "http://localhost:8765"

// ankiConnectVersion is the protocol version sent with every request.
const ankiConnectVersion = 6

// Client talks to an AnkiConnect-compatible deck store. Every call carries
// a timeout, and transport failures feed a circuit breaker so a store that
// is down fails fast instead of stalling each card in a batch.
type Client struct {
	url        string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a store client for the given URL. A zero timeout
// defaults to 10 seconds.
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultStoreURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "ankiconnect",
			Timeout: 15 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// request is the AnkiConnect action envelope.
type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

// response is the AnkiConnect reply envelope.
type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// CreateDeck creates a deck with the given (possibly hierarchical) name.
// The store treats creation as idempotent, so an existing deck is not an
// error.
func (c *Client) CreateDeck(ctx context.Context, name string) error {
	_, err := c.invoke(ctx, "createDeck", map[string]any{"deck": name})
	if err != nil {
		return fmt.Errorf("failed to create deck %q: %w", name, err)
	}
	return nil
}

// AddNote adds a Basic note with the given front and back to a deck.
func (c *Client) AddNote(ctx context.Context, deck, front, back string) error {
	params := map[string]any{
		"note": map[string]any{
			"deckName":  deck,
			"modelName": "Basic",
			"fields": map[string]string{
				"Front": front,
				"Back":  back,
			},
			"options": map[string]any{
				"allowDuplicate": false,
				"duplicateScope": "deck",
			},
		},
	}

	_, err := c.invoke(ctx, "addNote", params)
	if err != nil {
		return fmt.Errorf("failed to add note %q: %w", front, err)
	}
	return nil
}

// invoke performs one AnkiConnect action. Transport failures surface as
// ErrStoreUnavailable and count against the breaker; errors reported inside
// a well-formed reply envelope do not.
func (c *Client) invoke(ctx context.Context, action string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(request{Action: action, Version: ankiConnectVersion, Params: params})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("store returned HTTP %d", resp.StatusCode)
		}

		var envelope response
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return nil, fmt.Errorf("failed to decode store response: %w", err)
		}
		return &envelope, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrStoreUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	envelope := result.(*response)
	if envelope.Error != nil && *envelope.Error != "" {
		return nil, fmt.Errorf("store error: %s", *envelope.Error)
	}
	return envelope.Result, nil
}
