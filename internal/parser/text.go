package parser

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text lyric sheets: one input line per
// output line, trailing whitespace trimmed. Blank lines are kept; the
// extractor decides what to do with them.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), " \t\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
