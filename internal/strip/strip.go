// Package strip removes Stata comments from code that is about to be typed into a Stata
// console, leaving string literals alone.
//
// Three kinds of comment are removed:
//   - block comments /* ... */, which may span lines,
//   - line comments starting with //,
//   - continuation comments ///, which are removed together with the line break and the
//     whitespace that follows, joining the two lines.
//
// Comment markers inside single or double quoted literals are kept. A literal ends at the
// matching unescaped quote on the same line; a quote with no partner on its line is an
// ordinary character. An unterminated block comment is left as it is.
package strip

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Debug is called with the code before and after stripping.
var Debug = func(format string, args ...interface{}) {}

type Platform struct {
	IsWindows bool
}

// Strip removes comments from text. On Windows a carriage return is appended so that the Stata
// console submits the text rather than waiting for more.
func Strip(text string, platform Platform) string {
	Debug("strip: code with comments: %q\n", text)

	s := stripper{text: text}
	s.run()

	if platform.IsWindows {
		s.out.WriteByte('\r')
	}

	Debug("strip: code without comments: %q\n", s.out.String())
	return s.out.String()
}

const (
	stateNormal = iota
	stateSingleQuote
	stateDoubleQuote
	stateBlockComment
)

type stripper struct {
	text  string
	out   strings.Builder
	state int
	pos   int
	// start is where the literal or block comment being scanned began.
	start int
	// Once one block comment is found to be unterminated every later one is too.
	noBlockEnd bool
}

func (s *stripper) run() {
	for {
		if s.pos >= len(s.text) {
			if s.state == stateNormal {
				return
			}
			s.unterminated()
			continue
		}

		switch s.state {
		case stateNormal:
			s.normal()
		case stateSingleQuote:
			s.quoted('\'')
		case stateDoubleQuote:
			s.quoted('"')
		case stateBlockComment:
			s.blockComment()
		}
	}
}

func (s *stripper) rest() string {
	return s.text[s.pos:]
}

func (s *stripper) normal() {
	c := s.text[s.pos]

	switch {
	case c == '"':
		s.begin(stateDoubleQuote, 1)
	case c == '\'':
		s.begin(stateSingleQuote, 1)
	case strings.HasPrefix(s.rest(), "///"):
		s.continuation()
	case strings.HasPrefix(s.rest(), "//"):
		s.pos = s.endOfLine(s.pos)
	case strings.HasPrefix(s.rest(), "/*") && !s.noBlockEnd:
		s.begin(stateBlockComment, 2)
	default:
		s.out.WriteByte(c)
		s.pos++
	}
}

func (s *stripper) begin(state, markerLen int) {
	s.state = state
	s.start = s.pos
	s.pos += markerLen
}

func (s *stripper) quoted(quote byte) {
	switch c := s.text[s.pos]; c {
	case '\\':
		// An escape always consumes the next character, even a line break.
		s.pos += 2
		if s.pos > len(s.text) {
			s.pos = len(s.text)
		}
	case '\n', '\r':
		s.unterminated()
	case quote:
		s.pos++
		s.out.WriteString(s.text[s.start:s.pos])
		s.state = stateNormal
	default:
		s.pos++
	}
}

func (s *stripper) blockComment() {
	if strings.HasPrefix(s.rest(), "*/") {
		s.pos += 2
		s.state = stateNormal
		return
	}
	s.pos++
}

// unterminated abandons the literal or comment that began at s.start: its opening character
// is kept as ordinary text and scanning resumes right after it.
func (s *stripper) unterminated() {
	if s.state == stateBlockComment {
		s.noBlockEnd = true
	}
	s.out.WriteByte(s.text[s.start])
	s.pos = s.start + 1
	s.state = stateNormal
}

// continuation handles ///. When a line break follows, the comment, the line break and all
// whitespace after it are dropped. Otherwise it is an ordinary line comment.
func (s *stripper) continuation() {
	eol := s.endOfLine(s.pos)
	next := -1
	switch {
	case strings.HasPrefix(s.text[eol:], "\n"):
		next = eol + 1
	case strings.HasPrefix(s.text[eol:], "\r\n"):
		next = eol + 2
	}

	if next < 0 {
		s.pos = eol
		return
	}

	for next < len(s.text) {
		r, size := utf8.DecodeRuneInString(s.text[next:])
		if !unicode.IsSpace(r) {
			break
		}
		next += size
	}
	s.pos = next
}

// endOfLine returns the index of the first line break at or after i, or the length of the text.
func (s *stripper) endOfLine(i int) int {
	j := strings.IndexAny(s.text[i:], "\r\n")
	if j < 0 {
		return len(s.text)
	}
	return i + j
}
