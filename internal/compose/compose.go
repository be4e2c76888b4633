// Package compose walks a resolved performance order and emits the
// final ordered slide sequence for one song.
package compose

import (
	"context"

	"github.com/lyricast/lyricast/internal/format"
	"github.com/lyricast/lyricast/internal/song"
)

// Composer turns a resolved order into slide records. Each distinct
// section is formatted once and cached, so an order like C-V1-C-V2-C
// triggers at most one cleanup call per section.
type Composer struct {
	formatter *format.Formatter
	cache     map[*song.Section][]song.SlideChunk
}

func New(f *format.Formatter) *Composer {
	return &Composer{
		formatter: f,
		cache:     make(map[*song.Section][]song.SlideChunk),
	}
}

// Compose emits one SlideRecord per chunk, in token order. A section
// split into several chunks repeats its title on every chunk; the
// renderer owns any "continued" annotation. An empty order yields an
// empty (non-nil) sequence.
func (c *Composer) Compose(ctx context.Context, resolved song.ResolvedOrder) []song.SlideRecord {
	records := make([]song.SlideRecord, 0, len(resolved))
	for _, binding := range resolved {
		chunks, ok := c.cache[binding.Section]
		if !ok {
			chunks = c.formatter.Format(ctx, binding.Section)
			c.cache[binding.Section] = chunks
		}
		for _, chunk := range chunks {
			lines := make([]string, len(chunk.Lines))
			copy(lines, chunk.Lines)
			records = append(records, song.SlideRecord{
				Title: chunk.Label.Display(),
				Lines: lines,
			})
		}
	}
	return records
}
