package region

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jeffwilliams/astata/internal/buffer"
)

// LinePredicate decides whether a line of text is the one being searched for.
type LinePredicate func(line string) bool

// FindForward returns the end of the first line at or after startRow that satisfies pred.
// Nothing is found when startRow is at or past the last line.
func FindForward(v buffer.View, pred LinePredicate, startRow int) (p buffer.Position, ok bool) {
	last := v.LineCount() - 1
	if startRow >= last {
		return
	}
	if startRow < 0 {
		startRow = 0
	}

	for row := startRow; row <= last; row++ {
		if pred(v.LineText(row)) {
			return buffer.Position{Row: row, Col: v.LineLength(row)}, true
		}
	}
	return
}

// commentOnlyRegex matches lines holding nothing but a Stata comment: one starting with "*"
// or "//".
var commentOnlyRegex = regexp.MustCompile(`^\s*(?:\*|//)`)

// IsCommentOnly reports whether line contains only a comment.
func IsCommentOnly(line string) bool {
	return commentOnlyRegex.MatchString(line)
}

// NonEmptyLine returns the predicate used to pick the line the cursor moves to after running
// code: a line with at least one non-blank character that, when skipComments is set, is not a
// comment-only line.
func NonEmptyLine(skipComments bool) LinePredicate {
	return func(line string) bool {
		if OnlyWhitespace(line) {
			return false
		}
		return !skipComments || !IsCommentOnly(line)
	}
}

// FirstNonBlank is the position of the first non-blank character of row, or the end of the line
// if it has none.
func FirstNonBlank(v buffer.View, row int) buffer.Position {
	line := v.LineText(row)
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	col := len([]rune(line)) - len([]rune(trimmed))
	return buffer.Position{Row: row, Col: col}
}
