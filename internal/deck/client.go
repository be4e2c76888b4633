// Package deck is the client for the remote presentation-export
// service. The core hands it ordered SlideRecords; visual styling is
// entirely the service's concern.
package deck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lyricast/lyricast/internal/song"
)

// Client communicates with the deck service HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// createRequest is the body for POST /v1/decks.
type createRequest struct {
	Title string `json:"title"`
}

type createResponse struct {
	DeckID string `json:"deck_id"`
}

// appendRequest is the body for POST /v1/decks/{id}/slides.
type appendRequest struct {
	SongTitle string             `json:"song_title,omitempty"`
	Slides    []song.SlideRecord `json:"slides"`
}

type finalizeResponse struct {
	URL string `json:"url"`
}

// CreateDeck creates an empty presentation and returns its ID.
func (c *Client) CreateDeck(ctx context.Context, title string) (string, error) {
	var resp createResponse
	if err := c.post(ctx, "/v1/decks", createRequest{Title: title}, &resp); err != nil {
		return "", err
	}
	if resp.DeckID == "" {
		return "", fmt.Errorf("deck service returned empty deck_id")
	}
	return resp.DeckID, nil
}

// AppendSlides adds one song's slide sequence, preceded by a title
// slide, to an existing deck.
func (c *Client) AppendSlides(ctx context.Context, deckID, songTitle string, slides []song.SlideRecord) error {
	path := fmt.Sprintf("/v1/decks/%s/slides", deckID)
	return c.post(ctx, path, appendRequest{SongTitle: songTitle, Slides: slides}, nil)
}

// Finalize closes the deck and returns its shareable URL.
func (c *Client) Finalize(ctx context.Context, deckID string) (string, error) {
	var resp finalizeResponse
	path := fmt.Sprintf("/v1/decks/%s/finalize", deckID)
	if err := c.post(ctx, path, struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("deck service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("deck service %s: status %d: %s", path, resp.StatusCode, truncate(string(respBody), 200))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// RetryableError indicates a transient deck-service failure worth
// retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
