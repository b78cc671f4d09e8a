package config

import "strings"

// ExpandEscapes replaces the backslash-escapes \n, \r, \t and \\ in s with the characters
// they stand for. Other escapes are kept as written.
func ExpandEscapes(s string) string {
	var buf strings.Builder

	escaped := false
	for _, rn := range s {
		if !escaped {
			if rn == '\\' {
				escaped = true
				continue
			}
			buf.WriteRune(rn)
			continue
		}

		escaped = false
		switch rn {
		case 'n':
			buf.WriteRune('\n')
		case 'r':
			buf.WriteRune('\r')
		case 't':
			buf.WriteRune('\t')
		case '\\':
			buf.WriteRune('\\')
		default:
			buf.WriteRune('\\')
			buf.WriteRune(rn)
		}
	}

	if escaped {
		buf.WriteRune('\\')
	}

	return buf.String()
}
