package song

import "testing"

func TestLabelDisplay(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{Label{Kind: Verse, Index: 1}, "Verse 1"},
		{Label{Kind: Chorus}, "Chorus"},
		{Label{Kind: PreChorus, Index: 2}, "Pre-Chorus 2"},
		{Label{Kind: PreChorus}, "Pre-Chorus"},
		{Label{Kind: Chorus, Index: 1, Variant: "A"}, "Chorus 1A"},
		{Label{Kind: Vamp}, "Vamp"},
	}
	for _, tt := range tests {
		if got := tt.label.Display(); got != tt.want {
			t.Errorf("Display(%+v) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestSectionSet_FirstOccurrenceWins(t *testing.T) {
	set := NewSectionSet()
	first := &Section{Label: Label{Kind: Chorus}, Lines: []string{"original"}}
	second := &Section{Label: Label{Kind: Chorus}, Lines: []string{"other"}}
	set.Add(first)
	set.Add(second)

	if set.Len() != 1 {
		t.Fatalf("expected 1 section, got %d", set.Len())
	}
	got, ok := set.Lookup(Label{Kind: Chorus})
	if !ok {
		t.Fatal("chorus not found")
	}
	if got != first {
		t.Error("expected first occurrence to be kept")
	}
}

func TestSectionSet_LabelsDocumentOrder(t *testing.T) {
	set := NewSectionSet()
	set.Add(&Section{Label: Label{Kind: Chorus}})
	set.Add(&Section{Label: Label{Kind: Verse, Index: 1}})
	set.Add(&Section{Label: Label{Kind: Bridge}})

	want := []Label{{Kind: Chorus}, {Kind: Verse, Index: 1}, {Kind: Bridge}}
	got := set.Labels()
	if len(got) != len(want) {
		t.Fatalf("expected %d labels, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("labels[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"03. Trading My Sorrows - G.pdf", "Trading My Sorrows"},
		{"amazing grace.txt", "Amazing Grace"},
		{"Way Maker - Bb~C#.pdf", "Way Maker"},
		{"songs/10. How Great Thou Art.docx", "How Great Thou Art"},
		{"Cornerstone.pdf", "Cornerstone"},
		{".pdf", "Untitled"},
	}
	for _, tt := range tests {
		if got := TitleFromFilename(tt.in); got != tt.want {
			t.Errorf("TitleFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
