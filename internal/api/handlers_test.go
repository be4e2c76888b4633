package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lyricast/lyricast/internal/config"
	"github.com/lyricast/lyricast/internal/deck"
	"github.com/lyricast/lyricast/internal/pipeline"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const testAPIKey = "test-api-key"

const sampleSheet = `[Verse 1]
I love you
You are good
[Chorus]
Holy holy
Holy is He
He reigns
Forever and ever
Amen
`

func testConfig() config.Config {
	return config.Config{
		LyricastAPIKey: testAPIKey,
		WorkerCount:    2,
		MaxQueueSize:   10,
		MaxUploadBytes: 1 << 20,
		CleanupTimeout: time.Second,
		JobTTL:         time.Hour,
	}
}

func newTestServer(t *testing.T, decks *deck.Client) *Server {
	t.Helper()
	cfg := testConfig()
	orch := pipeline.NewOrchestrator(cfg, nil, decks, discard)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, nil, discard, cfg)
}

func multipartSong(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func doRequest(s *Server, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func waitForJob(t *testing.T, s *Server, jobID string) pipeline.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec := doRequest(s, http.MethodGet, "/api/songs/"+jobID+"/status", nil, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status endpoint returned %d: %s", rec.Code, rec.Body.String())
		}
		var snap pipeline.JobSnapshot
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			t.Fatalf("decode status: %v", err)
		}
		if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusFailed {
			return snap
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return pipeline.JobSnapshot{}
}

func TestHealthIsPublic(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health returned %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/songs/abc/status", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no auth: got %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/songs/abc/status", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad key: got %d, want 401", rec.Code)
	}
}

func TestSubmitSong_EndToEnd(t *testing.T) {
	s := newTestServer(t, nil)

	body, ct := multipartSong(t, "my-song.txt", sampleSheet, map[string]string{
		"order": "V1-C",
		"title": "My Song",
	})
	rec := doRequest(s, http.MethodPost, "/api/songs", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		JobID  string `json:"job_id"`
		SongID string `json:"song_id"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.JobID == "" || resp.SongID == "" {
		t.Fatalf("missing ids: %+v", resp)
	}
	if resp.Title != "My Song" {
		t.Errorf("title: %q", resp.Title)
	}

	snap := waitForJob(t, s, resp.JobID)
	if snap.Status != pipeline.StatusCompleted {
		t.Fatalf("job failed: %+v", snap)
	}

	rec = doRequest(s, http.MethodGet, "/api/songs/"+resp.JobID+"/slides", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("slides returned %d: %s", rec.Code, rec.Body.String())
	}
	var slidesResp struct {
		Slides []struct {
			Title string   `json:"title"`
			Lines []string `json:"lines"`
		} `json:"slides"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &slidesResp); err != nil {
		t.Fatalf("decode slides: %v", err)
	}
	if len(slidesResp.Slides) != 3 {
		t.Fatalf("got %d slides: %+v", len(slidesResp.Slides), slidesResp.Slides)
	}
	if slidesResp.Slides[0].Title != "Verse 1" || len(slidesResp.Slides[0].Lines) != 2 {
		t.Errorf("first slide: %+v", slidesResp.Slides[0])
	}
	if slidesResp.Slides[2].Title != "Chorus" || len(slidesResp.Slides[2].Lines) != 1 {
		t.Errorf("continuation slide: %+v", slidesResp.Slides[2])
	}
}

func TestSubmitSong_BadOrderRejectedUpfront(t *testing.T) {
	s := newTestServer(t, nil)
	body, ct := multipartSong(t, "song.txt", sampleSheet, map[string]string{"order": "-V1-C"})
	rec := doRequest(s, http.MethodPost, "/api/songs", body, ct)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("got %d, want 422: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitSong_UnsupportedType(t *testing.T) {
	s := newTestServer(t, nil)
	body, ct := multipartSong(t, "song.xlsx", "data", nil)
	rec := doRequest(s, http.MethodPost, "/api/songs", body, ct)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rec.Code)
	}
}

func TestSongStatus_NotFound(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/api/songs/nope/status", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, want 404", rec.Code)
	}
}

func TestSongSlides_ConflictBeforeCompletion(t *testing.T) {
	// No workers: the job stays queued and slides are never composed.
	cfg := testConfig()
	cfg.WorkerCount = 0
	orch := pipeline.NewOrchestrator(cfg, nil, nil, discard)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	s := NewServer(orch, nil, discard, cfg)

	body, ct := multipartSong(t, "slow.txt", sampleSheet, nil)
	rec := doRequest(s, http.MethodPost, "/api/songs", body, ct)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit returned %d", rec.Code)
	}
	var resp struct {
		JobID string `json:"job_id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)

	rec2 := doRequest(s, http.MethodGet, "/api/songs/"+resp.JobID+"/slides", nil, "")
	if rec2.Code != http.StatusConflict {
		t.Errorf("got %d, want 409 while queued", rec2.Code)
	}
}

func TestBatchSubmit_WithSetlist(t *testing.T) {
	s := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("files", "01. My Song - G.txt")
	fw.Write([]byte(sampleSheet))
	fw, _ = mw.CreateFormFile("files", "bad.xlsx")
	fw.Write([]byte("nope"))
	fw, _ = mw.CreateFormFile("setlist", "song_order.md")
	fw.Write([]byte("My Song: V1-C\n"))
	mw.Close()

	rec := doRequest(s, http.MethodPost, "/api/songs/batch", &buf, mw.FormDataContentType())
	if rec.Code != http.StatusAccepted {
		t.Fatalf("batch returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Jobs) != 2 {
		t.Fatalf("got %d results", len(resp.Jobs))
	}

	first := resp.Jobs[0]
	if first["title"] != "My Song" {
		t.Errorf("title from filename: %v", first["title"])
	}
	if first["order"] != "V1-C" {
		t.Errorf("order from setlist: %v", first["order"])
	}

	second := resp.Jobs[1]
	if second["error"] == nil {
		t.Errorf("unsupported file should report an error: %v", second)
	}

	snap := waitForJob(t, s, first["job_id"].(string))
	if snap.Status != pipeline.StatusCompleted {
		t.Errorf("batch job failed: %+v", snap)
	}
}

func TestExportDeck(t *testing.T) {
	deckSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/decks":
			json.NewEncoder(w).Encode(map[string]string{"deck_id": "d1"})
		case "/v1/decks/d1/slides":
			w.WriteHeader(http.StatusCreated)
		case "/v1/decks/d1/finalize":
			json.NewEncoder(w).Encode(map[string]string{"url": "https://decks.example/d1"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer deckSrv.Close()

	s := newTestServer(t, deck.NewClient(deckSrv.URL, "deck-key"))

	body, ct := multipartSong(t, "song.txt", sampleSheet, map[string]string{"order": "V1-C"})
	rec := doRequest(s, http.MethodPost, "/api/songs", body, ct)
	var submitResp struct {
		JobID string `json:"job_id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &submitResp)
	waitForJob(t, s, submitResp.JobID)

	exportBody, _ := json.Marshal(map[string]any{
		"title":   "Sunday Service",
		"job_ids": []string{submitResp.JobID},
	})
	rec = doRequest(s, http.MethodPost, "/api/decks", bytes.NewReader(exportBody), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("export returned %d: %s", rec.Code, rec.Body.String())
	}
	var exportResp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &exportResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if exportResp.URL != "https://decks.example/d1" {
		t.Errorf("url: %q", exportResp.URL)
	}
}

func TestCleanupStats(t *testing.T) {
	s := newTestServer(t, nil)
	rec := doRequest(s, http.MethodGet, "/api/stats/cleanup", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	var snap struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Count != 0 {
		t.Errorf("count = %d", snap.Count)
	}
}

func TestExportDeck_UnknownJob(t *testing.T) {
	s := newTestServer(t, deck.NewClient("http://localhost:0", "k"))
	body, _ := json.Marshal(map[string]any{"job_ids": []string{"missing"}})
	rec := doRequest(s, http.MethodPost, "/api/decks", bytes.NewReader(body), "application/json")
	if rec.Code != http.StatusConflict {
		t.Errorf("got %d, want 409: %s", rec.Code, rec.Body.String())
	}
}
