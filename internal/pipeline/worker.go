package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lyricast/lyricast/internal/compose"
	"github.com/lyricast/lyricast/internal/config"
	"github.com/lyricast/lyricast/internal/extract"
	"github.com/lyricast/lyricast/internal/format"
	"github.com/lyricast/lyricast/internal/order"
	"github.com/lyricast/lyricast/internal/parser"
	"github.com/lyricast/lyricast/internal/song"
)

// Worker runs the conversion pipeline for one job at a time:
// parse -> extract sections -> resolve order -> compose slides.
type Worker struct {
	cleaner format.Cleaner
	log     *slog.Logger
	cfg     config.Config
}

func NewWorker(cleaner format.Cleaner, log *slog.Logger, cfg config.Config) *Worker {
	return &Worker{
		cleaner: cleaner,
		log:     log,
		cfg:     cfg,
	}
}

// Process runs the full conversion pipeline for a job. Extraction and
// resolution failures abort before any composition work; AI cleanup
// failures are recovered inside the formatter.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "song_id", job.SongID, "file", job.Filename)

	// Phase 1: Parse the lyric sheet into text lines.
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, parser.PDFOptions{
		TwoColumn:         w.cfg.PDFTwoColumn,
		FallbackPdftotext: w.cfg.PDFFallbackPdftotext,
	})
	if err != nil {
		w.fail(job, log, StatusParsing, err)
		return
	}
	lines, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		w.fail(job, log, StatusParsing, fmt.Errorf("parse: %w", err))
		return
	}

	// Phase 2: Partition lines into labeled sections.
	job.SetStatus(StatusExtracting, "extracting")
	sections, err := extract.Sections(lines)
	if err != nil {
		w.fail(job, log, StatusExtracting, err)
		return
	}
	job.SetSectionCount(sections.Len())
	log.Info("extracted sections", "count", sections.Len())

	// Phase 3: Resolve the performance order.
	job.SetStatus(StatusResolving, "resolving")
	var resolved song.ResolvedOrder
	if job.OrderSpec == "" {
		resolved = documentOrder(sections)
	} else {
		resolved, err = order.Resolve(job.OrderSpec, sections, order.Options{
			ReuseVerse: w.cfg.ReuseVerse,
		})
		if err != nil {
			w.fail(job, log, StatusResolving, err)
			return
		}
	}

	// Phase 4: Format and compose slides.
	job.SetStatus(StatusComposing, "composing")
	var cleaner format.Cleaner
	if job.Clean {
		cleaner = w.cleaner
	}
	formatter := format.New(cleaner, w.cfg.CleanupTimeout, job.Title, log)
	slides := compose.New(formatter).Compose(ctx, resolved)
	job.SetSlides(slides)

	job.SetStatus(StatusCompleted, "done")
	log.Info("song composed",
		"sections", sections.Len(),
		"bindings", len(resolved),
		"slides", len(slides),
		"took_ms", time.Since(job.CreatedAt).Milliseconds(),
	)
}

func (w *Worker) fail(job *Job, log *slog.Logger, status JobStatus, err error) {
	log.Error("pipeline failed", "phase", status, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, string(status))
}

// documentOrder builds a resolved order that simply follows the order
// sections appear on the sheet, used when no order spec is supplied.
func documentOrder(set *song.SectionSet) song.ResolvedOrder {
	labels := set.Labels()
	resolved := make(song.ResolvedOrder, 0, len(labels))
	for _, l := range labels {
		sec, _ := set.Lookup(l)
		resolved = append(resolved, song.Binding{Token: l.Display(), Section: sec})
	}
	return resolved
}
