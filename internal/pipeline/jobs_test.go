package pipeline

import (
	"testing"
	"time"

	"github.com/lyricast/lyricast/internal/song"
)

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "abc", Status: StatusQueued, UpdatedAt: time.Now()}
	store.Put(job)

	if got := store.Get("abc"); got != job {
		t.Errorf("Get returned %v", got)
	}
	if got := store.Get("missing"); got != nil {
		t.Errorf("Get for unknown id returned %v", got)
	}
}

func TestJobStore_CleanupEvictsExpired(t *testing.T) {
	store := NewJobStore(time.Minute)
	stale := &Job{ID: "stale", UpdatedAt: time.Now().Add(-2 * time.Minute)}
	fresh := &Job{ID: "fresh", UpdatedAt: time.Now()}
	store.Put(stale)
	store.Put(fresh)

	store.Cleanup()

	if store.Get("stale") != nil {
		t.Error("expired job not evicted")
	}
	if store.Get("fresh") == nil {
		t.Error("fresh job evicted")
	}
}

func TestJob_SnapshotErrorsNeverNil(t *testing.T) {
	job := &Job{ID: "abc"}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("snapshot errors should be an empty slice, not nil")
	}

	job.AddError("boom")
	snap = job.Snapshot()
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "boom" {
		t.Errorf("got %v", snap.Progress.Errors)
	}
}

func TestJob_SlidesReturnsCopy(t *testing.T) {
	job := &Job{ID: "abc"}
	job.SetSlides([]song.SlideRecord{{Title: "Chorus", Lines: []string{"a"}}})

	out := job.Slides()
	out[0].Title = "mutated"
	if job.Slides()[0].Title != "Chorus" {
		t.Error("Slides exposed internal storage")
	}
}

func TestNewJobID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewJobID()
		if len(id) != 26 {
			t.Fatalf("id %q has length %d, want 26", id, len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestContentHashHex(t *testing.T) {
	a := ContentHashHex([]byte("hello"))
	b := ContentHashHex([]byte("hello"))
	c := ContentHashHex([]byte("world"))
	if a != b {
		t.Error("hash not deterministic")
	}
	if a == c {
		t.Error("different content hashed equal")
	}
	if len(a) != 64 {
		t.Errorf("hex length %d, want 64", len(a))
	}
}
