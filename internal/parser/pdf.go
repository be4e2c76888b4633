package parser

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFOptions controls PDF text extraction.
type PDFOptions struct {
	// TwoColumn splits each page at its horizontal midpoint and reads
	// the left column before the right, matching the layout of most
	// printed lyric sheets.
	TwoColumn bool
	// FallbackPdftotext shells out to pdftotext when the Go library
	// cannot extract anything.
	FallbackPdftotext bool
}

// PDFParser extracts positioned text from lyric sheet PDFs.
type PDFParser struct {
	Options PDFOptions
}

func (p *PDFParser) Parse(r io.Reader, filename string) ([]string, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "lyricast-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	lines, err := p.extractPositioned(tmpPath)
	if (err != nil || len(lines) == 0) && p.Options.FallbackPdftotext {
		lines, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return lines, nil
}

// extractPositioned reads positioned text runs per page and groups
// them into lines, column by column when two-column mode is on.
func (p *PDFParser) extractPositioned(path string) ([]string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		texts := page.Content().Text
		if len(texts) == 0 {
			continue
		}

		if p.Options.TwoColumn {
			left, right := splitColumns(texts)
			lines = append(lines, groupIntoLines(left)...)
			lines = append(lines, groupIntoLines(right)...)
		} else {
			lines = append(lines, groupIntoLines(texts)...)
		}
	}
	return lines, nil
}

// splitColumns partitions text runs at the midpoint of the page's
// horizontal text extent.
func splitColumns(texts []pdflib.Text) (left, right []pdflib.Text) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, t := range texts {
		if t.X < minX {
			minX = t.X
		}
		if t.X > maxX {
			maxX = t.X
		}
	}
	mid := (minX + maxX) / 2
	for _, t := range texts {
		if t.X < mid {
			left = append(left, t)
		} else {
			right = append(right, t)
		}
	}
	return left, right
}

// groupIntoLines buckets text runs by vertical position (top to
// bottom), orders each bucket left to right, and joins runs into a
// line, inserting spaces at visible horizontal gaps.
func groupIntoLines(texts []pdflib.Text) []string {
	if len(texts) == 0 {
		return nil
	}
	const yThreshold = 3.0

	sorted := make([]pdflib.Text, len(texts))
	copy(sorted, texts)
	// PDF origin is bottom-left: larger Y is higher on the page.
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > yThreshold {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []string
	var current []pdflib.Text
	for _, t := range sorted {
		if len(current) > 0 && math.Abs(t.Y-current[len(current)-1].Y) > yThreshold {
			lines = append(lines, joinRuns(current))
			current = current[:0]
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		lines = append(lines, joinRuns(current))
	}
	return lines
}

func joinRuns(runs []pdflib.Text) string {
	var sb strings.Builder
	for i, t := range runs {
		if i > 0 {
			prev := runs[i-1]
			gap := t.X - (prev.X + prev.W)
			space := prev.FontSize * 0.3
			if space <= 0 {
				space = 1.5
			}
			if gap > space && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(strings.ReplaceAll(t.S, "\x00", ""))
	}
	return strings.TrimSpace(sb.String())
}

func extractPdftotext(path string) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	text := strings.ReplaceAll(string(out), "\f", "\n")
	return strings.Split(text, "\n"), nil
}
