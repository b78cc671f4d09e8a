// Package region finds the unit of Stata code around a cursor: a paragraph, a program
// definition, or the next line worth moving to.
package region

import (
	"strings"

	"github.com/jeffwilliams/astata/internal/buffer"
)

// OnlyWhitespace reports whether s is empty or contains only whitespace.
func OnlyWhitespace(s string) bool {
	return strings.TrimSpace(s) == ""
}

// FindParagraph returns the block of lines around cursorRow that is delimited by blank lines or
// the edges of the buffer. It returns false when the cursor is on a blank line.
func FindParagraph(v buffer.View, cursorRow int) (r buffer.LineRange, ok bool) {
	n := v.LineCount()
	if cursorRow < 0 || cursorRow >= n || OnlyWhitespace(v.LineText(cursorRow)) {
		return
	}

	start := 0
	for row := cursorRow - 1; row >= 0; row-- {
		if OnlyWhitespace(v.LineText(row)) {
			start = row + 1
			break
		}
	}

	end := n - 1
	for row := cursorRow + 1; row < n; row++ {
		if OnlyWhitespace(v.LineText(row)) {
			end = row - 1
			break
		}
	}

	return buffer.FullLines(v, start, end), true
}
