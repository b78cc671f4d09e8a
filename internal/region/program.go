package region

import (
	"regexp"

	"github.com/jeffwilliams/astata/internal/buffer"
)

// Debug is called to explain why no program was found.
var Debug = func(format string, args ...interface{}) {}

const (
	programKeyword = `pr(?:o(?:g(?:r(?:a(?:m)?)?)?)?)?`
	defineKeyword  = `de(?:f(?:i(?:n(?:e)?)?)?)?`
	identifier     = `[A-Za-z_][A-Za-z0-9_]{0,31}`
	captureKeyword = `cap(?:t(?:u(?:r(?:e)?)?)?)?`
)

var (
	// programStartRegex matches "program [define] name" with any abbreviation of the keywords
	// Stata accepts. RE2 has no lookahead, so "program drop" is excluded with dropWordRegex.
	programStartRegex = regexp.MustCompile(`(?i)^\s*` + programKeyword + `\s+(?:` + defineKeyword + `\s+)?` + identifier)
	programDropRegex  = regexp.MustCompile(`(?i)^\s*(?:` + captureKeyword + `\s+)?` + programKeyword + `\s+drop\s+` + identifier)
	dropWordRegex     = regexp.MustCompile(`(?i)^\s*` + programKeyword + `\s+drop(?:\s|$)`)
	programEndRegex   = regexp.MustCompile(`^\s*end\s*$`)
)

// IsProgramStart reports whether line begins a program definition.
func IsProgramStart(line string) bool {
	return programStartRegex.MatchString(line) && !dropWordRegex.MatchString(line)
}

// IsProgramDrop reports whether line is a "program drop name" statement, optionally prefixed
// by "capture".
func IsProgramDrop(line string) bool {
	return programDropRegex.MatchString(line)
}

// IsProgramEnd reports whether line is the "end" that closes a program definition.
func IsProgramEnd(line string) bool {
	return programEndRegex.MatchString(line)
}

// FindProgramBlock returns the lines of the program definition that encloses cursorRow,
// from the "program" line through its "end". A "program drop" of the program on the line just
// above the definition is included so that re-running the block redefines the program.
//
// Stata programs do not nest, so the nearest "program" line at or above the cursor and the
// first "end" after it delimit the only candidate. It returns false if either is missing or
// the cursor lies outside them.
func FindProgramBlock(v buffer.View, cursorRow int) (r buffer.LineRange, ok bool) {
	n := v.LineCount()
	if n == 0 || cursorRow < 0 {
		return
	}

	from := cursorRow
	if from > n-1 {
		from = n - 1
	}

	start := -1
	for row := from; row >= 0; row-- {
		if IsProgramStart(v.LineText(row)) {
			start = row
			break
		}
	}
	if start < 0 {
		Debug("region: couldn't find the beginning of the program\n")
		return
	}

	end := -1
	for row := start + 1; row < n; row++ {
		if IsProgramEnd(v.LineText(row)) {
			end = row
			break
		}
	}
	if end < 0 {
		Debug("region: couldn't find the end of the program starting on line %d\n", start)
		return
	}

	if start > 0 && IsProgramDrop(v.LineText(start-1)) {
		start--
	}

	if cursorRow < start || cursorRow > end {
		Debug("region: couldn't find a program surrounding line %d. start: %d end: %d\n", cursorRow, start, end)
		return
	}

	return buffer.FullLines(v, start, end), true
}
