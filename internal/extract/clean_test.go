package extract

import "testing"

func TestIsChordLine(t *testing.T) {
	chordLines := []string{
		"C  Am7  F2  G",
		"| C | Am7 | F2 |",
		"| D | G/B | A | x2",
		"Bb  C#m7  Gsus4",
		"G(4)  F/C",
	}
	for _, line := range chordLines {
		if !isChordLine(line) {
			t.Errorf("isChordLine(%q) = false, want true", line)
		}
	}

	lyricLines := []string{
		"Amazing grace how sweet the sound",
		"C is for the cross",
		"",
		"x2",
	}
	for _, line := range lyricLines {
		if isChordLine(line) {
			t.Errorf("isChordLine(%q) = true, want false", line)
		}
	}
}

func TestCleanLine_Drops(t *testing.T) {
	dropped := []string{
		"",
		"   ",
		"C  Am7  F2  G",
		"CCLI Song # 2456623",
		"© 1998 Integrity's Hosanna! Music",
		"www.songselect.com",
		"Used by Permission",
		"Key - G | Tempo - 72 | Time - 4/4",
		"(To Chorus)",
		"To Turnaround",
		"(2.)",
	}
	for _, line := range dropped {
		if got, ok := CleanLine(line); ok {
			t.Errorf("CleanLine(%q) kept %q, want drop", line, got)
		}
	}
}

func TestCleanLine_InlineChordsStripped(t *testing.T) {
	got, ok := CleanLine("G          C      I'm trading my sorrows")
	if !ok {
		t.Fatal("line dropped")
	}
	if got != "I'm trading my sorrows" {
		t.Errorf("got %q", got)
	}
}

func TestCleanLine_HyphenRejoin(t *testing.T) {
	got, ok := CleanLine("I'm trading my sor - rows")
	if !ok {
		t.Fatal("line dropped")
	}
	if got != "I'm trading my sorrows" {
		t.Errorf("got %q", got)
	}
}

func TestCleanLine_MergedWordsSplit(t *testing.T) {
	tests := []struct{ in, want string }{
		{"everlasting,You reign", "everlasting, You reign"},
		{"the joy'sgonna be", "the joy's gonna be"},
		{"gloryAt the sound", "glory At the sound"},
	}
	for _, tt := range tests {
		got, ok := CleanLine(tt.in)
		if !ok {
			t.Errorf("CleanLine(%q) dropped", tt.in)
			continue
		}
		if got != tt.want {
			t.Errorf("CleanLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanLine_PlainLyricUntouched(t *testing.T) {
	in := "Yes Lord, yes Lord, yes yes Lord"
	got, ok := CleanLine(in)
	if !ok || got != in {
		t.Errorf("CleanLine(%q) = %q, %v", in, got, ok)
	}
}
