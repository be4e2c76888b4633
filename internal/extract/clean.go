package extract

import (
	"regexp"
	"strings"
)

// Chord symbols as they appear on lyric sheets: A, Am7, G(4), F/C,
// Gsus4, Bb, C#m, Dm7/F.
var chordRe = regexp.MustCompile(
	`^[A-G][#b]?` +
		`(?:m|maj|min|dim|aug|sus|add)?` +
		`[0-9]*` +
		`(?:\([0-9]+\))?` +
		`(?:/[A-G][#b]?)?$`,
)

var bassFragmentRe = regexp.MustCompile(`^/[A-G][#b]?$`)

var navigationRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\(To\s+\w+.*?\)`),
	regexp.MustCompile(`\(\d+\.\)`),
	regexp.MustCompile(`(?i)^To\s+(Turnaround|Instrumental|Chorus|Verse|Bridge|Vamp|Coda|Intro|Outro|Ending|Tag)\b`),
}

var footerIndicators = []string{
	"ccli", "license", "copyright", "©", "www.", ".com", ".org",
	"all rights reserved", "used by permission", "terms of use",
	"songselect", "based on the recording",
}

var metadataRe = regexp.MustCompile(`(?i)^(Key|Tempo|Time)\s*[-–]`)

var (
	hyphenSplitRe   = regexp.MustCompile(`(\w)\s+-\s+(\w)`)
	camelMergeRe    = regexp.MustCompile(`([a-z])([A-Z])`)
	commaMergeRe    = regexp.MustCompile(`,(\S)`)
	possessiveRe    = regexp.MustCompile(`'s([a-z])`)
	chartSeparators = regexp.MustCompile(`[\s|]+`)
	multiSpaceRe    = regexp.MustCompile(`\s{2,}`)
)

func isChord(word string) bool {
	return word != "" && chordRe.MatchString(word)
}

// isChordLine reports whether a line is nothing but chord symbols and
// chart separators ("| C | Am7 | F2 | x2").
func isChordLine(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	parts := chartSeparators.Split(line, -1)
	n := 0
	for _, p := range parts {
		if p == "" || p == "x2" || p == "x3" || p == "x4" {
			continue
		}
		if !isChord(p) {
			return false
		}
		n++
	}
	return n > 0
}

func isFooterLine(line string) bool {
	lower := strings.ToLower(line)
	for _, ind := range footerIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// CleanLine normalizes one raw extracted line of lyrics. It returns
// false for lines that carry no lyric content: blanks, chord charts,
// legal footers, sheet metadata, navigation markers.
func CleanLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	if isChordLine(line) || isFooterLine(line) || metadataRe.MatchString(line) {
		return "", false
	}
	for _, re := range navigationRes {
		if re.MatchString(line) {
			return "", false
		}
	}

	// Drop inline chords that survived row extraction.
	words := strings.Fields(line)
	kept := words[:0]
	for _, w := range words {
		if isChord(w) || bassFragmentRe.MatchString(w) {
			continue
		}
		kept = append(kept, w)
	}
	cleaned := strings.Join(kept, " ")

	// Rejoin words the extractor split at line-wrap hyphens:
	// "sor - rows" -> "sorrows".
	cleaned = hyphenSplitRe.ReplaceAllString(cleaned, "$1$2")
	// Split words the extractor merged: "everlasting,You", "joy'sgonna",
	// "gloryAt".
	cleaned = commaMergeRe.ReplaceAllString(cleaned, ", $1")
	cleaned = possessiveRe.ReplaceAllString(cleaned, "'s $1")
	cleaned = camelMergeRe.ReplaceAllString(cleaned, "$1 $2")

	cleaned = multiSpaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if len(cleaned) < 2 {
		return "", false
	}
	return cleaned, true
}
