package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lyricast/lyricast/internal/config"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const sampleSheet = `Trading My Sorrows
[Verse 1]
I'm trading my sorrows
I'm trading my shame
[Chorus]
Yes Lord, yes Lord, yes yes Lord
Yes Lord, yes Lord, yes yes Lord
Yes Lord, yes Lord, yes yes Lord
Amen
`

func newTestJob(data, orderSpec string) *Job {
	job := &Job{
		ID:        NewJobID(),
		SongID:    ContentHashHex([]byte(data))[:16],
		Status:    StatusQueued,
		Filename:  "trading-my-sorrows.txt",
		Title:     "Trading My Sorrows",
		OrderSpec: orderSpec,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	job.SetFileData([]byte(data))
	return job
}

func TestWorker_ProcessTextSong(t *testing.T) {
	w := NewWorker(nil, discard, config.Config{})
	job := newTestJob(sampleSheet, "V1-C-V1")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("status %q, errors %v", snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Sections != 2 {
		t.Errorf("sections = %d, want 2", snap.Progress.Sections)
	}

	// V1 (1 chunk) + C (1 chunk of 4) + V1 again.
	slides := job.Slides()
	if len(slides) != 3 {
		t.Fatalf("got %d slides: %+v", len(slides), slides)
	}
	if slides[0].Title != "Verse 1" || slides[1].Title != "Chorus" || slides[2].Title != "Verse 1" {
		t.Errorf("titles: %q %q %q", slides[0].Title, slides[1].Title, slides[2].Title)
	}
	if slides[1].Lines[0] != "Yes Lord, yes Lord, yes yes Lord" {
		t.Errorf("chorus first line: %q", slides[1].Lines[0])
	}
}

func TestWorker_DocumentOrderWhenNoSpec(t *testing.T) {
	w := NewWorker(nil, discard, config.Config{})
	job := newTestJob(sampleSheet, "")

	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusCompleted {
		t.Fatalf("status %q", job.Snapshot().Status)
	}
	slides := job.Slides()
	if len(slides) != 2 {
		t.Fatalf("got %d slides", len(slides))
	}
	if slides[0].Title != "Verse 1" || slides[1].Title != "Chorus" {
		t.Errorf("titles: %q %q", slides[0].Title, slides[1].Title)
	}
}

func TestWorker_FailsOnMissingSection(t *testing.T) {
	w := NewWorker(nil, discard, config.Config{})
	job := newTestJob(sampleSheet, "V1-C-B")

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("status %q, want failed", snap.Status)
	}
	if len(snap.Progress.Errors) == 0 {
		t.Error("expected a recorded error")
	}
}

func TestWorker_FailsOnNoSections(t *testing.T) {
	w := NewWorker(nil, discard, config.Config{})
	job := newTestJob("just plain prose\nwith no labels at all", "")

	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusFailed {
		t.Fatalf("status %q, want failed", job.Snapshot().Status)
	}
}

func TestWorker_UnsupportedExtension(t *testing.T) {
	w := NewWorker(nil, discard, config.Config{})
	job := newTestJob(sampleSheet, "")
	job.Filename = "song.xlsx"

	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusFailed {
		t.Fatalf("status %q, want failed", job.Snapshot().Status)
	}
}
