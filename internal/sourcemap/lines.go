package sourcemap

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// Position is a zero-based line and a zero-based column counted in characters.
type Position struct {
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

type LineColSpan struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// LineIndex maps byte offsets of one source text to positions. Build it once
// per text and reuse it for every lookup against that text.
type LineIndex struct {
	src    string
	starts []int
}

func NewLineIndex(src string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{src: src, starts: starts}
}

func (li *LineIndex) Position(offset uint32) (Position, error) {
	off := int(offset)
	if off > len(li.src) {
		return Position{}, fmt.Errorf("sourcemap: offset %d beyond source length %d", off, len(li.src))
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > off }) - 1
	col := utf8.RuneCountInString(li.src[li.starts[line]:off])
	return Position{Line: uint32(line), Column: uint32(col)}, nil
}

func (li *LineIndex) Span(s Span) (LineColSpan, error) {
	if s.End < s.Start {
		return LineColSpan{}, fmt.Errorf("sourcemap: inverted span %d..%d", s.Start, s.End)
	}
	start, err := li.Position(s.Start)
	if err != nil {
		return LineColSpan{}, err
	}
	end, err := li.Position(s.End)
	if err != nil {
		return LineColSpan{}, err
	}
	return LineColSpan{Start: start, End: end}, nil
}
