package buffer

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// View is line-indexed read access to a document. Rows outside [0, LineCount()) read as
// empty lines.
type View interface {
	LineCount() int
	LineText(row int) string
	LineLength(row int) int
	TextInRange(r LineRange) string
}

// Lines is an immutable snapshot of a document split into lines. Line text excludes the line
// terminator; the terminators ("\n" or "\r\n") are remembered so that TextInRange returns the
// text exactly as it appears in the document.
type Lines struct {
	lines []string
	eols  []string
	// starts holds the rune offset at which each line begins.
	starts []int
}

// NewLines splits text into lines. An empty text, or a text ending in a newline, has a final
// empty line, as an editor shows it.
func NewLines(text string) *Lines {
	l := &Lines{}

	offset := 0
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			l.add(text, "", offset)
			break
		}

		line, eol := text[:i], "\n"
		if strings.HasSuffix(line, "\r") {
			line, eol = line[:len(line)-1], "\r\n"
		}
		l.add(line, eol, offset)
		offset += utf8.RuneCountInString(line) + utf8.RuneCountInString(eol)
		text = text[i+1:]
	}

	return l
}

// LinesOf builds a snapshot from lines that are joined with "\n".
func LinesOf(lines ...string) *Lines {
	return NewLines(strings.Join(lines, "\n"))
}

func (l *Lines) add(line, eol string, start int) {
	l.lines = append(l.lines, line)
	l.eols = append(l.eols, eol)
	l.starts = append(l.starts, start)
}

func (l *Lines) LineCount() int {
	return len(l.lines)
}

func (l *Lines) valid(row int) bool {
	return row >= 0 && row < len(l.lines)
}

func (l *Lines) LineText(row int) string {
	if !l.valid(row) {
		return ""
	}
	return l.lines[row]
}

// LineLength is the length of the line in runes.
func (l *Lines) LineLength(row int) int {
	return utf8.RuneCountInString(l.LineText(row))
}

// Clamp moves p inside the document.
func (l *Lines) Clamp(p Position) Position {
	if p.Row < 0 {
		return Position{}
	}
	if p.Row >= len(l.lines) {
		last := len(l.lines) - 1
		return Position{last, l.LineLength(last)}
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if n := l.LineLength(p.Row); p.Col > n {
		p.Col = n
	}
	return p
}

// Offset converts a position to a rune offset into the document.
func (l *Lines) Offset(p Position) int {
	p = l.Clamp(p)
	return l.starts[p.Row] + p.Col
}

// PositionOf converts a rune offset into the document to a position. Offsets that fall on a
// line terminator map to the end of that line.
func (l *Lines) PositionOf(offset int) Position {
	if offset <= 0 {
		return Position{}
	}

	row := sort.Search(len(l.starts), func(i int) bool {
		return l.starts[i] > offset
	}) - 1

	return l.Clamp(Position{row, offset - l.starts[row]})
}

// TextInRange returns the text between r.Start and r.End, including the line terminators of
// every line but the last.
func (l *Lines) TextInRange(r LineRange) string {
	r.Reorient()
	start, end := l.Clamp(r.Start), l.Clamp(r.End)

	var buf strings.Builder
	for row := start.Row; row <= end.Row; row++ {
		rns := []rune(l.lines[row])
		from, to := 0, len(rns)
		if row == start.Row {
			from = start.Col
		}
		if row == end.Row {
			to = end.Col
		}
		if from < to {
			buf.WriteString(string(rns[from:to]))
		}
		if row != end.Row {
			buf.WriteString(l.eols[row])
		}
	}
	return buf.String()
}

// FullLines is the range covering rows first through last completely.
func FullLines(v View, first, last int) LineRange {
	return LineRange{
		Start: Position{first, 0},
		End:   Position{last, v.LineLength(last)},
	}
}
