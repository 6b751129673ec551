package extract

import "strings"

// normalizeSyntax fixes the lax JSON dialect models tend to emit: trailing
// commas before '}' or ']', bare identifier keys and single-quoted strings.
// Double-quoted strings are copied verbatim. The returned warnings list the
// fixes that fired, in a fixed order.
func normalizeSyntax(src string) (string, []Warning) {
	var (
		b               strings.Builder
		removedComma    bool
		quotedKey       bool
		normalizedQuote bool
		last            byte // last significant byte emitted outside strings
	)
	b.Grow(len(src) + 16)

	for i := 0; i < len(src); {
		c := src[i]

		switch {
		case c == '"':
			end := skipDoubleQuoted(src, i)
			b.WriteString(src[i:end])
			last = '"'
			i = end

		case c == '\'':
			converted, end := convertSingleQuoted(src, i)
			b.WriteString(converted)
			normalizedQuote = true
			last = '"'
			i = end

		case c == ',':
			j := i + 1
			for j < len(src) && isSpace(src[j]) {
				j++
			}
			if j < len(src) && (src[j] == '}' || src[j] == ']') {
				removedComma = true
				i++
				continue
			}
			b.WriteByte(c)
			last = c
			i++

		case isIdentStart(c) && (last == '{' || last == ','):
			j := i
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			k := j
			for k < len(src) && isSpace(src[k]) {
				k++
			}
			if k < len(src) && src[k] == ':' {
				b.WriteByte('"')
				b.WriteString(src[i:j])
				b.WriteByte('"')
				quotedKey = true
			} else {
				b.WriteString(src[i:j])
			}
			last = src[j-1]
			i = j

		default:
			b.WriteByte(c)
			if !isSpace(c) {
				last = c
			}
			i++
		}
	}

	var warnings []Warning
	if removedComma {
		warnings = append(warnings, WarningTrailingCommaRemoved)
	}
	if quotedKey {
		warnings = append(warnings, WarningKeyQuoted)
	}
	if normalizedQuote {
		warnings = append(warnings, WarningQuoteNormalized)
	}
	return b.String(), warnings
}

// skipDoubleQuoted returns the index just past the string starting at
// src[start] == '"', or len(src) if it never closes.
func skipDoubleQuoted(src string, start int) int {
	escaped := false
	for i := start + 1; i < len(src); i++ {
		switch {
		case escaped:
			escaped = false
		case src[i] == '\\':
			escaped = true
		case src[i] == '"':
			return i + 1
		}
	}
	return len(src)
}

// convertSingleQuoted rewrites the single-quoted string starting at
// src[start] as a double-quoted one and returns it with the index just past
// the closing quote. An unterminated string is returned without a closing quote.
func convertSingleQuoted(src string, start int) (string, int) {
	var b strings.Builder
	b.WriteByte('"')

	for i := start + 1; i < len(src); i++ {
		c := src[i]
		switch c {
		case '\\':
			if i+1 >= len(src) {
				b.WriteByte(c)
				return b.String(), len(src)
			}
			next := src[i+1]
			if next == '\'' {
				b.WriteByte('\'')
			} else {
				b.WriteByte(c)
				b.WriteByte(next)
			}
			i++
		case '\'':
			b.WriteByte('"')
			return b.String(), i + 1
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), len(src)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-'
}
