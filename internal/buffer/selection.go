package buffer

import (
	"fmt"
	"sort"
)

// Selection is a selected span of text. An empty selection is a bare cursor at Range.Start.
type Selection struct {
	Range LineRange
	Text  string
}

func (s Selection) IsEmpty() bool {
	return s.Text == ""
}

// Cursor is where the selection's cursor sits: the start of an empty selection, or the end of
// a non-empty one.
func (s Selection) Cursor() Position {
	if s.IsEmpty() {
		return s.Range.Start
	}
	return s.Range.End
}

// TextRange is a segment of a document between the rune offsets [Start, End), the form the
// editor reports selections in.
type TextRange struct {
	Start, End int
}

func (r TextRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

func (r TextRange) Len() int {
	return r.End - r.Start
}

// touches reports whether offset lies within the range or on one of its edges.
func (r TextRange) touches(offset int) bool {
	return r.Start <= offset && offset <= r.End
}

// Selections converts editor selections and cursor offsets into Selections ordered by
// position. Each cursor that is not on the edge of or inside a non-empty selection becomes an
// empty selection.
func (l *Lines) Selections(ranges []TextRange, cursors []int) []Selection {
	var sels []Selection
	var kept []TextRange

	for _, r := range ranges {
		if r.End < r.Start {
			r.Start, r.End = r.End, r.Start
		}
		if r.Len() == 0 {
			cursors = append(cursors, r.Start)
			continue
		}
		kept = append(kept, r)
		rng := LineRange{l.PositionOf(r.Start), l.PositionOf(r.End)}
		sels = append(sels, Selection{Range: rng, Text: l.TextInRange(rng)})
	}

	seen := map[int]bool{}
	for _, c := range cursors {
		if seen[c] || touchesAny(kept, c) {
			continue
		}
		seen[c] = true
		p := l.PositionOf(c)
		sels = append(sels, Selection{Range: LineRange{p, p}})
	}

	sort.SliceStable(sels, func(i, j int) bool {
		return sels[i].Range.Start.Compare(sels[j].Range.Start) < 0
	})
	return sels
}

func touchesAny(ranges []TextRange, offset int) bool {
	for _, r := range ranges {
		if r.touches(offset) {
			return true
		}
	}
	return false
}

// Snapshot is the state of a window at the moment a command is invoked.
type Snapshot struct {
	Lines *Lines
	// Selections are ordered by position. There is always at least one.
	Selections []Selection
}

// NewSnapshot builds a snapshot. With no selections and no cursors the cursor is taken to be
// at the start of the document.
func NewSnapshot(text string, ranges []TextRange, cursors []int) Snapshot {
	l := NewLines(text)
	sels := l.Selections(ranges, cursors)
	if len(sels) == 0 {
		sels = []Selection{{}}
	}
	return Snapshot{Lines: l, Selections: sels}
}

// Cursor is the cursor of the last selection in document order.
func (s Snapshot) Cursor() Position {
	if len(s.Selections) == 0 {
		return Position{}
	}
	return s.Selections[len(s.Selections)-1].Cursor()
}
