// Package usfm parses line-oriented USFM scripture markup into a
// book → chapters → verses tree, attaching headings, paragraph breaks and
// poetry lines to the verse that follows them.
package usfm

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/FocuswithJustin/synopsis/core/errors"
)

// maxLineSize bounds a single logical line; whole chapters on one line are
// seen in the wild.
const maxLineSize = 16 << 20

var (
	// Section headings and poetry lines carry their text on the marker line.
	textBlockRegex = regexp.MustCompile(`^(?:s|ms|q|qm)[1-4]?$|^q[rc]$`)
	// Paragraph-level markers are recorded without text.
	paragraphRegex = regexp.MustCompile(`^(?:p|m|nb|b|mi|pc|pr|pm|pmo|pmc|pmr|cls|pi[1-4]?|ph[1-4]?)$`)
)

// Parse parses a complete USFM document held in memory.
func Parse(text string) (*Document, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader parses a USFM document in a single forward pass.
//
// A verse marker seen before any chapter marker fails the whole parse with a
// *errors.MalformedDocumentError. Every other irregularity degrades
// gracefully: unknown markers are ignored, a repeated \id overwrites the book
// id, and blocks after the last verse are dropped.
func ParseReader(r io.Reader) (*Document, error) {
	p := &parser{doc: &Document{Chapters: []*Chapter{}}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		if err := p.handle(lineNo, line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewIO("read", "usfm", err)
	}

	return p.doc, nil
}

type parser struct {
	doc     *Document
	current *Chapter
	pending []Block
}

func (p *parser) handle(lineNo int, line string) error {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || !strings.HasPrefix(trimmed, "\\") {
		return nil
	}

	marker, value := splitMarker(trimmed)

	switch {
	case marker == "id":
		if value != "" {
			p.doc.BookID = value
		}

	case marker == "c":
		label, rest := splitFirst(value)
		if label == "" {
			return nil
		}
		p.current = p.doc.startChapter(label)
		if isLineMarker(rest) {
			return p.handle(lineNo, rest)
		}

	case marker == "v":
		if p.current == nil {
			return errors.NewMalformed(lineNo, marker, "verse marker before any chapter marker")
		}
		num, text := splitFirst(value)
		if num == "" {
			return nil
		}
		p.current.putVerse(&Verse{
			ID:           num,
			Text:         text,
			BlocksBefore: p.takePending(),
		})

	case textBlockRegex.MatchString(marker):
		if isLineMarker(value) {
			p.pending = append(p.pending, Block{Marker: marker})
			return p.handle(lineNo, value)
		}
		if value != "" {
			p.pending = append(p.pending, Block{Marker: marker, Text: value})
		}

	case paragraphRegex.MatchString(marker):
		p.pending = append(p.pending, Block{Marker: marker})
		if isLineMarker(value) {
			return p.handle(lineNo, value)
		}
	}

	return nil
}

// takePending hands the accumulated blocks to a verse and resets the
// accumulator.
func (p *parser) takePending() []Block {
	blocks := p.pending
	if blocks == nil {
		blocks = []Block{}
	}
	p.pending = nil
	return blocks
}

// splitMarker splits `\tag rest` into the tag (without backslash) and the
// trimmed remainder.
func splitMarker(line string) (string, string) {
	body := line[1:]
	idx := strings.IndexFunc(body, isSpace)
	if idx < 0 {
		return body, ""
	}
	return body[:idx], strings.TrimSpace(body[idx:])
}

// splitFirst splits s into its first whitespace-delimited token and the
// trimmed remainder.
func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexFunc(s, isSpace)
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx:])
}

// isLineMarker reports whether s starts with a marker that begins a logical
// line of its own (chapter, verse, heading, poetry or paragraph).
func isLineMarker(s string) bool {
	if !strings.HasPrefix(s, "\\") {
		return false
	}
	marker, _ := splitMarker(s)
	return marker == "v" || marker == "c" ||
		textBlockRegex.MatchString(marker) || paragraphRegex.MatchString(marker)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\u00A0'
}
