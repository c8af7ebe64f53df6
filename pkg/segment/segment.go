// Package segment splits raw document text into an ordered sequence of
// renderable blocks: plain text runs and embedded mermaid diagrams.
package segment

import (
	"regexp"
	"strings"
)

// Kind discriminates the two block types a document body can contain.
type Kind string

const (
	KindText    Kind = "text"
	KindDiagram Kind = "diagram"
)

// Segment is one renderable block. Content is what a viewer displays: for
// diagrams the fence interior with surrounding whitespace trimmed, for text
// the run verbatim. Raw is the exact original bytes including fence lines,
// so concatenating Raw across all segments reproduces the input.
type Segment struct {
	Kind    Kind
	Content string
	Raw     string
}

// mermaidOpenRegex matches the opening fence of a mermaid block, e.g.
// "```mermaid" with optional surrounding whitespace.
var mermaidOpenRegex = regexp.MustCompile("^\\s*```mermaid\\s*$")

func isMermaidOpen(line string) bool {
	return mermaidOpenRegex.MatchString(strings.TrimSuffix(line, "\n"))
}

func isFenceClose(line string) bool {
	return strings.TrimSpace(line) == "```"
}

// Split segments text into its ordered blocks. It is pure and idempotent:
// the same input always yields byte-identical segment boundaries, which the
// viewer relies on because it re-segments on every content change.
//
// Non-mermaid fenced blocks stay inside text runs; only a mermaid tag opens
// a diagram. An unterminated mermaid fence extends to the end of the input.
// Non-adjacent text runs are never merged or reordered.
func Split(text string) []Segment {
	it := NewIterator(text)
	var segs []Segment
	for {
		seg, ok := it.Next()
		if !ok {
			return segs
		}
		segs = append(segs, seg)
	}
}

// Iterator walks a document's segments one at a time. It is finite and
// restartable; Reset rewinds it to the start of the same input.
type Iterator struct {
	lines []string
	pos   int
}

// NewIterator returns an iterator over text's segments.
func NewIterator(text string) *Iterator {
	if text == "" {
		return &Iterator{}
	}
	return &Iterator{lines: strings.SplitAfter(text, "\n")}
}

// Reset rewinds the iterator to the beginning of the input.
func (it *Iterator) Reset() {
	it.pos = 0
}

// Next returns the next segment, or ok=false when the input is exhausted.
func (it *Iterator) Next() (Segment, bool) {
	if it.pos >= len(it.lines) {
		return Segment{}, false
	}
	// SplitAfter leaves a trailing "" element when the input ends in a
	// newline; it carries no bytes and is skipped.
	if it.lines[it.pos] == "" {
		it.pos = len(it.lines)
		return Segment{}, false
	}

	if isMermaidOpen(it.lines[it.pos]) {
		return it.nextDiagram(), true
	}
	return it.nextText(), true
}

func (it *Iterator) nextText() Segment {
	var raw strings.Builder
	for it.pos < len(it.lines) && !isMermaidOpen(it.lines[it.pos]) {
		raw.WriteString(it.lines[it.pos])
		it.pos++
	}
	s := raw.String()
	return Segment{Kind: KindText, Content: s, Raw: s}
}

func (it *Iterator) nextDiagram() Segment {
	var raw strings.Builder
	raw.WriteString(it.lines[it.pos]) // opening fence
	it.pos++

	var body strings.Builder
	closed := false
	for it.pos < len(it.lines) {
		line := it.lines[it.pos]
		raw.WriteString(line)
		it.pos++
		if isFenceClose(line) {
			closed = true
			break
		}
		body.WriteString(line)
	}
	_ = closed // an unterminated fence still renders as a diagram
	return Segment{
		Kind:    KindDiagram,
		Content: strings.TrimSpace(body.String()),
		Raw:     raw.String(),
	}
}

// Reassemble concatenates the raw form of every segment. For any input,
// Reassemble(Split(input)) == input.
func Reassemble(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Raw)
	}
	return b.String()
}
