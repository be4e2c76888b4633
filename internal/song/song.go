package song

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is the type of a lyric section.
type Kind string

const (
	Verse     Kind = "Verse"
	Chorus    Kind = "Chorus"
	Bridge    Kind = "Bridge"
	Vamp      Kind = "Vamp"
	PreChorus Kind = "PreChorus"
	Intro     Kind = "Intro"
	Outro     Kind = "Outro"
	Tag       Kind = "Tag"
	Other     Kind = "Other"
)

// Label identifies a section within one song. Index 0 means unindexed
// (a generic "Chorus" rather than "Chorus 1"). Variant carries the
// sub-part letter of labels like "Chorus 1A".
type Label struct {
	Kind    Kind
	Index   int
	Variant string
}

// Display returns the slide-title form of a label, e.g. "Verse 1",
// "Chorus", "Pre-Chorus 2", "Chorus 1A".
func (l Label) Display() string {
	name := string(l.Kind)
	if l.Kind == PreChorus {
		name = "Pre-Chorus"
	}
	if l.Index == 0 {
		return name
	}
	return fmt.Sprintf("%s %d%s", name, l.Index, l.Variant)
}

// Section is a labeled block of lyric lines in document order.
// Lines are non-empty; blank lines are dropped during extraction.
type Section struct {
	Label Label
	Lines []string
}

// SectionSet holds the sections of one song, keyed by label, and
// remembers document order for default-order composition.
type SectionSet struct {
	byLabel map[Label]*Section
	order   []Label
}

func NewSectionSet() *SectionSet {
	return &SectionSet{byLabel: make(map[Label]*Section)}
}

// Add stores a section. The first occurrence of a label wins; callers
// are expected to have resolved duplicates before adding.
func (s *SectionSet) Add(sec *Section) {
	if _, ok := s.byLabel[sec.Label]; ok {
		return
	}
	s.byLabel[sec.Label] = sec
	s.order = append(s.order, sec.Label)
}

// Lookup returns the section for a label, if present.
func (s *SectionSet) Lookup(l Label) (*Section, bool) {
	sec, ok := s.byLabel[l]
	return sec, ok
}

// Labels returns labels in document order.
func (s *SectionSet) Labels() []Label {
	out := make([]Label, len(s.order))
	copy(out, s.order)
	return out
}

func (s *SectionSet) Len() int {
	return len(s.order)
}

// Binding pairs an order-spec token with the section it resolved to.
type Binding struct {
	Token   string
	Section *Section
}

// ResolvedOrder is the performance sequence: one binding per token,
// repeats allowed.
type ResolvedOrder []Binding

// SlideChunk is a slide-sized fragment of a section's formatted text.
type SlideChunk struct {
	Label Label
	Lines []string
}

// SlideRecord is the externally-facing slide unit handed to the
// presentation-export service.
type SlideRecord struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

var (
	numberPrefixRe = regexp.MustCompile(`^\d+\.\s*`)
	keySuffixRe    = regexp.MustCompile(`\s*-\s*[A-G][#b]?(~[A-G][#b]?)?\s*$`)
	titleCaser     = cases.Title(language.AmericanEnglish, cases.NoLower)
)

// TitleFromFilename derives a song title from a lyric sheet filename,
// stripping the setlist number prefix ("03. ") and the musical key
// suffix (" - G", " - Bb~C#").
func TitleFromFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = numberPrefixRe.ReplaceAllString(name, "")
	name = keySuffixRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "Untitled"
	}
	return titleCaser.String(name)
}
