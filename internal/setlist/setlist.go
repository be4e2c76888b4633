// Package setlist parses song-order files (song_order.md): one line
// per song, "Song Title: V1-C-V2-C" or a bare title for PDF order.
package setlist

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Entry is one setlist line. An empty Order means the song plays in
// the order its sections appear on the sheet.
type Entry struct {
	Title string
	Order string
}

// Setlist is an ordered collection of entries with title lookup.
type Setlist struct {
	Entries []Entry
}

// Parse reads a markdown setlist. Headings are treated as comments
// (set names, dates); paragraph and list-item lines become entries.
func Parse(r io.Reader) (*Setlist, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	sl := &Setlist{}
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Heading:
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			for _, line := range blockLines(n, src) {
				if e, ok := parseLine(line); ok {
					sl.Entries = append(sl.Entries, e)
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return sl, nil
}

// blockLines returns the source lines of a block node, one string per
// soft-broken line.
func blockLines(n ast.Node, src []byte) []string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	var out []string
	for _, line := range strings.Split(buf.String(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func parseLine(line string) (Entry, bool) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "-"))
	if line == "" || strings.HasPrefix(line, "#") {
		return Entry{}, false
	}
	if title, order, ok := strings.Cut(line, ":"); ok {
		return Entry{
			Title: strings.TrimSpace(title),
			Order: strings.Trim(strings.TrimSpace(order), " -"),
		}, true
	}
	return Entry{Title: line}, true
}

// OrderFor finds the order spec for a song title. Matching is fuzzy:
// exact (case-insensitive), then substring either way, then at least
// two words in common. Returns false when no entry matches.
func (sl *Setlist) OrderFor(title string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(title))
	if want == "" {
		return "", false
	}

	for _, e := range sl.Entries {
		if strings.ToLower(strings.TrimSpace(e.Title)) == want {
			return e.Order, true
		}
	}

	for _, e := range sl.Entries {
		have := strings.ToLower(strings.TrimSpace(e.Title))
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return e.Order, true
		}
	}

	wantWords := wordSet(want)
	bestScore := 0
	var best *Entry
	for i := range sl.Entries {
		common := 0
		for w := range wordSet(strings.ToLower(sl.Entries[i].Title)) {
			if wantWords[w] {
				common++
			}
		}
		if common > bestScore {
			bestScore = common
			best = &sl.Entries[i]
		}
	}
	if bestScore >= 2 {
		return best.Order, true
	}
	return "", false
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}
