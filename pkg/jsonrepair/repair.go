// Package jsonrepair patches a few common hand-editing mistakes in JSON text
// so it can be decoded by encoding/json.
//
// Only three malformations are handled: trailing commas before a closing
// brace or bracket, unquoted object keys, and single-quoted strings. Text
// inside double-quoted strings is never modified. Anything else is passed
// through unchanged, so the output is not guaranteed to be valid JSON.
package jsonrepair

import "strings"

// Repair returns s with the supported malformations fixed.
func Repair(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)

	// last is the last non-whitespace byte written, used to recognize key position.
	var last byte
	write := func(str string) {
		b.WriteString(str)
		if t := strings.TrimRight(str, " \t\r\n"); t != "" {
			last = t[len(t)-1]
		}
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"':
			end := scanDouble(s, i)
			write(s[i:end])
			i = end

		case c == '\'':
			str, end := convertSingle(s, i)
			write(str)
			i = end

		case c == ',':
			if next := skipSpace(s, i+1); next < len(s) && (s[next] == '}' || s[next] == ']') {
				i++
				continue
			}
			write(",")
			i++

		case isIdentStart(c) && (last == '{' || last == ','):
			end := i
			for end < len(s) && isIdentPart(s[end]) {
				end++
			}
			ident := s[i:end]
			if next := skipSpace(s, end); next < len(s) && s[next] == ':' {
				write(`"` + ident + `"`)
			} else {
				write(ident)
			}
			i = end

		default:
			write(s[i : i+1])
			i++
		}
	}
	return b.String()
}

// scanDouble returns the index just past the double-quoted string starting at i.
func scanDouble(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(s)
}

// convertSingle rewrites the single-quoted string starting at i as a
// double-quoted one and returns it with the index just past its end.
func convertSingle(s string, i int) (string, int) {
	var b strings.Builder
	b.WriteByte('"')
	j := i + 1
	for ; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '\\' && j+1 < len(s):
			if s[j+1] == '\'' {
				b.WriteByte('\'')
			} else {
				b.WriteByte('\\')
				b.WriteByte(s[j+1])
			}
			j++
		case c == '"':
			b.WriteString(`\"`)
		case c == '\'':
			b.WriteByte('"')
			return b.String(), j + 1
		default:
			b.WriteByte(c)
		}
	}
	// Unterminated: close it so the damage stays local.
	b.WriteByte('"')
	return b.String(), j
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}
