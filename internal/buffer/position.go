// Package buffer is a read-only view of an editor window body, addressed by line and column.
package buffer

import "fmt"

// Position points into a buffer by (Row, Col). Row and Col are 0-based and Col counts runes.
type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

// Compare returns -1, 0 or 1 depending on whether p is before, equal to or after o in
// row-major order.
func (p Position) Compare(o Position) int {
	switch {
	case p.Row < o.Row:
		return -1
	case p.Row > o.Row:
		return 1
	case p.Col < o.Col:
		return -1
	case p.Col > o.Col:
		return 1
	}
	return 0
}

// LineRange is an inclusive span of lines, with column precision at both ends. End.Col is an
// exclusive column, so a range covering whole lines ends at the length of the last line.
type LineRange struct {
	Start Position
	End   Position
}

// NewLineRange builds a range and reorients it so that Start is not after End.
func NewLineRange(start, end Position) LineRange {
	r := LineRange{start, end}
	r.Reorient()
	return r
}

// Reorient swaps Start and End if End is before Start.
func (r *LineRange) Reorient() (swapped bool) {
	if r.End.Compare(r.Start) < 0 {
		swapped = true
		r.Start, r.End = r.End, r.Start
	}
	return
}

func (r LineRange) String() string {
	return fmt.Sprintf("[%s,%s)", r.Start, r.End)
}

// IsEmpty reports whether the range selects no text.
func (r LineRange) IsEmpty() bool {
	return r.Start == r.End
}

// ContainsRow reports whether row is one of the lines the range touches.
func (r LineRange) ContainsRow(row int) bool {
	return r.Start.Row <= row && row <= r.End.Row
}
