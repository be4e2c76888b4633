package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lyricast/lyricast/internal/config"
	"github.com/lyricast/lyricast/internal/deck"
	"github.com/lyricast/lyricast/internal/format"
)

// Orchestrator manages the song conversion pipeline and deck export.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	cleaner format.Cleaner
	decks   *deck.Client
	log     *slog.Logger
	cfg     config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. cleaner may be nil when no
// OpenAI key is configured; jobs requesting cleanup then run without it.
func NewOrchestrator(cfg config.Config, cleaner format.Cleaner, decks *deck.Client, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		cleaner: cleaner,
		decks:   decks,
		log:     log,
		cfg:     cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.cleaner, o.log, o.cfg)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// ExportDeck builds one presentation from the composed slides of the
// given jobs, in the given order, and returns the deck URL. Transient
// deck-service failures are retried with backoff.
func (o *Orchestrator) ExportDeck(ctx context.Context, title string, jobIDs []string) (string, error) {
	type songSlides struct {
		job *Job
	}
	songs := make([]songSlides, 0, len(jobIDs))
	for _, id := range jobIDs {
		job := o.jobs.Get(id)
		if job == nil {
			return "", fmt.Errorf("job %s not found", id)
		}
		if snap := job.Snapshot(); snap.Status != StatusCompleted {
			return "", fmt.Errorf("job %s is %s, not completed", id, snap.Status)
		}
		songs = append(songs, songSlides{job: job})
	}

	var deckID string
	err := withRetry(ctx, func() error {
		var err error
		deckID, err = o.decks.CreateDeck(ctx, title)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create deck: %w", err)
	}

	for _, s := range songs {
		snap := s.job.Snapshot()
		slides := s.job.Slides()
		err := withRetry(ctx, func() error {
			return o.decks.AppendSlides(ctx, deckID, snap.Title, slides)
		})
		if err != nil {
			return "", fmt.Errorf("append slides for %s: %w", snap.Title, err)
		}
		o.log.Info("appended song to deck", "deck_id", deckID, "title", snap.Title, "slides", len(slides))
	}

	var url string
	err = withRetry(ctx, func() error {
		var err error
		url, err = o.decks.Finalize(ctx, deckID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("finalize deck: %w", err)
	}
	return url, nil
}
