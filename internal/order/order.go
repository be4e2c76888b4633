// Package order parses compact performance-order notation ("V1-C-V2-C-Va")
// and resolves each token against a song's extracted sections.
package order

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lyricast/lyricast/internal/song"
)

var (
	// ErrMalformedOrder means the order spec has an empty or
	// unrecognized token. An order spec is user intent: it is honored
	// exactly or rejected, never silently pruned.
	ErrMalformedOrder = errors.New("malformed order spec")
	// ErrSectionNotFound means a token's label has no extracted section.
	ErrSectionNotFound = errors.New("section not found")
)

// Options controls resolution behavior that the notation itself leaves
// open.
type Options struct {
	// ReuseVerse pins every bare "V" token to the first verse instead
	// of advancing through verses on repetition.
	ReuseVerse bool
}

var separatorRe = regexp.MustCompile(`[-\s]+`)

var tokenRe = regexp.MustCompile(`(?i)^(?:(va|vamp)|v(?:erse)?\s*([1-9])?|(c|chorus)|(b|bridge)|(pc|pre-?chorus)|(intro)|(outro)|(tag))$`)

// parseToken maps one abbreviation to a label. A bare verse token is
// returned as {Verse, 0} and resolved later against available verses.
func parseToken(tok string) (song.Label, error) {
	m := tokenRe.FindStringSubmatch(strings.TrimSpace(tok))
	if m == nil {
		return song.Label{}, fmt.Errorf("%w: token %q", ErrMalformedOrder, tok)
	}
	switch {
	case m[1] != "":
		return song.Label{Kind: song.Vamp}, nil
	case m[3] != "":
		return song.Label{Kind: song.Chorus}, nil
	case m[4] != "":
		return song.Label{Kind: song.Bridge}, nil
	case m[5] != "":
		return song.Label{Kind: song.PreChorus}, nil
	case m[6] != "":
		return song.Label{Kind: song.Intro}, nil
	case m[7] != "":
		return song.Label{Kind: song.Outro}, nil
	case m[8] != "":
		return song.Label{Kind: song.Tag}, nil
	default:
		idx := 0
		if m[2] != "" {
			idx, _ = strconv.Atoi(m[2])
		}
		return song.Label{Kind: song.Verse, Index: idx}, nil
	}
}

// Tokenize splits an order spec on "-" (whitespace also accepted, as
// setlist files use both) and rejects empty tokens.
func Tokenize(spec string) ([]string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: empty spec", ErrMalformedOrder)
	}
	raw := separatorRe.Split(spec, -1)
	toks := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, fmt.Errorf("%w: empty token", ErrMalformedOrder)
		}
		toks = append(toks, t)
	}
	return toks, nil
}

// Resolve turns an order spec into bindings against the extracted
// sections. Every token resolves independently; the only cross-token
// state is which verses a bare "V" has already used.
func Resolve(spec string, set *song.SectionSet, opts Options) (song.ResolvedOrder, error) {
	toks, err := Tokenize(spec)
	if err != nil {
		return nil, err
	}

	verses := verseLabels(set)
	nextVerse := 0

	resolved := make(song.ResolvedOrder, 0, len(toks))
	for _, tok := range toks {
		label, err := parseToken(tok)
		if err != nil {
			return nil, err
		}

		var sec *song.Section
		switch {
		case label.Kind == song.Verse && label.Index == 0:
			if len(verses) == 0 {
				return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, tok)
			}
			pick := verses[nextVerse%len(verses)]
			if opts.ReuseVerse {
				pick = verses[0]
			}
			nextVerse++
			sec, _ = set.Lookup(pick)
		default:
			var ok bool
			sec, ok = set.Lookup(label)
			if !ok && label.Index == 0 {
				// "C" with only "Chorus 1" extracted binds to the
				// lowest-indexed section of that kind.
				sec, ok = lowestIndexed(set, label.Kind)
			}
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, tok)
			}
		}
		resolved = append(resolved, song.Binding{Token: tok, Section: sec})
	}
	return resolved, nil
}

// verseLabels returns the song's verse labels ordered by index, with a
// generic unindexed verse treated as the lowest.
func verseLabels(set *song.SectionSet) []song.Label {
	var out []song.Label
	for _, l := range set.Labels() {
		if l.Kind == song.Verse {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].Variant < out[j].Variant
	})
	return out
}

func lowestIndexed(set *song.SectionSet, kind song.Kind) (*song.Section, bool) {
	var best *song.Label
	for _, l := range set.Labels() {
		l := l
		if l.Kind != kind {
			continue
		}
		if best == nil || l.Index < best.Index || (l.Index == best.Index && l.Variant < best.Variant) {
			best = &l
		}
	}
	if best == nil {
		return nil, false
	}
	return set.Lookup(*best)
}
