package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lyricast/lyricast/internal/song"
)

var (
	// ErrNoSections means no section label line was found anywhere in
	// the document.
	ErrNoSections = errors.New("no sections found")
	// ErrConflictingSection means the same label appeared twice with
	// different body text.
	ErrConflictingSection = errors.New("conflicting section body")
)

var kindKeywords = map[string]song.Kind{
	"verse":      song.Verse,
	"chorus":     song.Chorus,
	"bridge":     song.Bridge,
	"vamp":       song.Vamp,
	"pre-chorus": song.PreChorus,
	"prechorus":  song.PreChorus,
	"intro":      song.Intro,
	"outro":      song.Outro,
	"tag":        song.Tag,
}

// Headers that open a region we discard rather than extract: song
// navigation structure, not lyrics.
var ignoredHeaders = map[string]bool{
	"instrumental": true,
	"interlude":    true,
	"turnaround":   true,
	"ending":       true,
}

// A label line, after trimming whitespace and punctuation, is a
// keyword optionally followed by a numeral and an A/B variant letter:
// "[Verse 1]", "CHORUS:", "Pre-Chorus 2", "Chorus 1A".
var labelRe = regexp.MustCompile(`(?i)^([a-z][a-z-]*)\s*(\d{0,2})\s*([ab]?)$`)

// MatchLabel reports whether a line is a section label line and, if
// so, which label it declares.
func MatchLabel(line string) (song.Label, bool) {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.Trim(trimmed, "[]():.,;-–— \t")
	m := labelRe.FindStringSubmatch(trimmed)
	if m == nil {
		return song.Label{}, false
	}
	kind, ok := kindKeywords[strings.ToLower(m[1])]
	if !ok {
		return song.Label{}, false
	}
	idx := 0
	if m[2] != "" {
		idx, _ = strconv.Atoi(m[2])
		if idx == 0 {
			return song.Label{}, false
		}
	}
	variant := strings.ToUpper(m[3])
	if variant != "" && idx == 0 {
		// A bare variant letter ("Chorus A") is not a recognized form.
		return song.Label{}, false
	}
	return song.Label{Kind: kind, Index: idx, Variant: variant}, true
}

func isIgnoredHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	trimmed = strings.Trim(trimmed, "[]():.,;-–— \t")
	trimmed = strings.ToLower(trimmed)
	if i := strings.IndexAny(trimmed, " \t"); i > 0 {
		trimmed = trimmed[:i]
	}
	return ignoredHeaders[trimmed]
}

// Sections scans document lines in order and partitions them into
// labeled sections. Text before the first label line is discarded;
// blank lines are dropped; lines under ignored headers (Instrumental,
// Interlude, ...) are discarded. A repeated label with identical body
// is treated as a repeat marker; a repeated label with a different
// body is an error.
func Sections(lines []string) (*song.SectionSet, error) {
	set := song.NewSectionSet()

	var current *song.Section
	ignoring := false

	flush := func() error {
		if current == nil {
			return nil
		}
		if prev, ok := set.Lookup(current.Label); ok {
			// A bodiless repeated label is a repeat marker ("sing the
			// chorus again"), not a conflict.
			if len(current.Lines) != 0 && !sameBody(prev.Lines, current.Lines) {
				return fmt.Errorf("%w: %s", ErrConflictingSection, current.Label.Display())
			}
			// Repeat marker for an already-stored section.
			current = nil
			return nil
		}
		set.Add(current)
		current = nil
		return nil
	}

	for _, line := range lines {
		if isIgnoredHeader(line) {
			if err := flush(); err != nil {
				return nil, err
			}
			ignoring = true
			continue
		}
		if label, ok := MatchLabel(line); ok {
			if err := flush(); err != nil {
				return nil, err
			}
			ignoring = false
			current = &song.Section{Label: label}
			continue
		}
		if ignoring || current == nil {
			continue
		}
		cleaned, ok := CleanLine(line)
		if !ok {
			continue
		}
		current.Lines = append(current.Lines, cleaned)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if set.Len() == 0 {
		return nil, ErrNoSections
	}
	return set, nil
}

func sameBody(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
