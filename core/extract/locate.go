package extract

import "strings"

// Locate finds the region of text most likely to be the JSON root. Arrays are
// preferred: the scan starts at the first '[' if there is one, otherwise at
// the first '{'. Depth is tracked only for the root's own bracket pair and
// only outside string literals. The second return value is false when the
// text contains neither bracket.
func Locate(text string) (Candidate, bool) {
	if start := strings.IndexByte(text, '['); start >= 0 {
		return locateFrom(text, start, KindArray), true
	}
	if start := strings.IndexByte(text, '{'); start >= 0 {
		return locateFrom(text, start, KindObject), true
	}
	return Candidate{}, false
}

func locateFrom(text string, start int, kind Kind) Candidate {
	opener, closer := kind.open(), kind.close()
	candidate := Candidate{Start: start, End: len(text), Kind: kind}

	depth := 0
	scanStructural(text, start, func(i int, c byte) bool {
		switch c {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				candidate.End = i + 1
				candidate.Balanced = true
				return false
			}
		}
		return true
	})

	return candidate
}
