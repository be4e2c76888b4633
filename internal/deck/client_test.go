package deck

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lyricast/lyricast/internal/song"
)

func TestCreateDeck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/decks" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header: %q", got)
		}
		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Title != "Worship Slides" {
			t.Errorf("title: %q", req.Title)
		}
		json.NewEncoder(w).Encode(map[string]string{"deck_id": "deck-123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	defer c.Close()

	id, err := c.CreateDeck(context.Background(), "Worship Slides")
	if err != nil {
		t.Fatalf("CreateDeck: %v", err)
	}
	if id != "deck-123" {
		t.Errorf("deck id: %q", id)
	}
}

func TestCreateDeck_EmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	if _, err := c.CreateDeck(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty deck_id")
	}
}

func TestAppendSlides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/decks/deck-123/slides" {
			t.Errorf("path: %s", r.URL.Path)
		}
		var req struct {
			SongTitle string             `json:"song_title"`
			Slides    []song.SlideRecord `json:"slides"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.SongTitle != "Trading My Sorrows" || len(req.Slides) != 1 {
			t.Errorf("request: %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	slides := []song.SlideRecord{{Title: "Chorus", Lines: []string{"Yes Lord"}}}
	if err := c.AppendSlides(context.Background(), "deck-123", "Trading My Sorrows", slides); err != nil {
		t.Fatalf("AppendSlides: %v", err)
	}
}

func TestFinalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/decks/deck-123/finalize" {
			t.Errorf("path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"url": "https://decks.example/d/deck-123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	url, err := c.Finalize(context.Background(), "deck-123")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if url != "https://decks.example/d/deck-123" {
		t.Errorf("url: %q", url)
	}
}

func TestPost_RetryableStatuses(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		c := NewClient(srv.URL, "test-key")
		_, err := c.CreateDeck(context.Background(), "x")
		srv.Close()

		var retryable *RetryableError
		if !errors.As(err, &retryable) {
			t.Errorf("status %d: expected RetryableError, got %v", status, err)
			continue
		}
		if retryable.StatusCode != status {
			t.Errorf("status %d: recorded %d", status, retryable.StatusCode)
		}
	}
}

func TestPost_ClientErrorNotRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.CreateDeck(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		t.Error("4xx should not be retryable")
	}
}
