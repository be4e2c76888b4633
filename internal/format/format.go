// Package format turns an extracted section into slide-sized chunks:
// an optional best-effort cleanup call, a reverent-word capitalization
// pass, and a split into at most MaxSlideLines lines per chunk.
package format

import (
	"context"
	"log/slog"
	"time"

	"github.com/lyricast/lyricast/internal/song"
)

// MaxSlideLines is the most lines one slide body may hold.
const MaxSlideLines = 4

// Cleaner repairs OCR/extraction noise in a section's lines. It must
// return the same number of lines it was given. Implementations are
// remote and may fail; the formatter always falls back to the input.
type Cleaner interface {
	Clean(ctx context.Context, songTitle, sectionName string, lines []string) ([]string, error)
}

// Formatter applies the formatting rules for one song. A nil Cleaner
// disables the cleanup step entirely.
type Formatter struct {
	cleaner   Cleaner
	timeout   time.Duration
	songTitle string
	log       *slog.Logger
}

func New(cleaner Cleaner, timeout time.Duration, songTitle string, log *slog.Logger) *Formatter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Formatter{cleaner: cleaner, timeout: timeout, songTitle: songTitle, log: log}
}

// Format produces the slide chunks for a section. A section with zero
// lines yields zero chunks. Cleanup failures are recovered here and
// never abort the pipeline.
func (f *Formatter) Format(ctx context.Context, sec *song.Section) []song.SlideChunk {
	lines := sec.Lines

	if f.cleaner != nil && len(lines) > 0 {
		cleanCtx, cancel := context.WithTimeout(ctx, f.timeout)
		cleaned, err := f.cleaner.Clean(cleanCtx, f.songTitle, sec.Label.Display(), lines)
		cancel()
		switch {
		case err != nil:
			f.log.Warn("cleanup failed, using raw text",
				"section", sec.Label.Display(), "error", err)
		case len(cleaned) != len(lines):
			f.log.Warn("cleanup changed line count, using raw text",
				"section", sec.Label.Display(),
				"got", len(cleaned), "want", len(lines))
		default:
			lines = cleaned
		}
	}

	formatted := make([]string, len(lines))
	for i, line := range lines {
		formatted[i] = CapitalizeReverent(line)
	}

	return split(sec.Label, formatted)
}

// split partitions lines into consecutive chunks of at most
// MaxSlideLines. Lines are atomic; the last chunk may be short.
func split(label song.Label, lines []string) []song.SlideChunk {
	if len(lines) == 0 {
		return nil
	}
	chunks := make([]song.SlideChunk, 0, (len(lines)+MaxSlideLines-1)/MaxSlideLines)
	for start := 0; start < len(lines); start += MaxSlideLines {
		end := start + MaxSlideLines
		if end > len(lines) {
			end = len(lines)
		}
		chunk := song.SlideChunk{Label: label, Lines: make([]string, end-start)}
		copy(chunk.Lines, lines[start:end])
		chunks = append(chunks, chunk)
	}
	return chunks
}
