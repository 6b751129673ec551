package extract

// scanStructural walks text from start and calls visit for every byte that
// lies outside a string literal, string delimiters excluded. Inside a string a
// backslash escapes the following byte and an unescaped '"' ends the string.
// Returning false from visit stops the walk.
//
// This is the single bracket-scanning primitive shared by the locator and the
// recovery engine; callers work on offsets into the one text they pass in.
func scanStructural(text string, start int, visit func(i int, c byte) bool) {
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
			continue
		}

		if !visit(i, c) {
			return
		}
	}
}

// closerFor returns the closing delimiter for an opening one.
func closerFor(open byte) byte {
	if open == '{' {
		return '}'
	}
	return ']'
}

// isSpace reports JSON insignificant whitespace.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
