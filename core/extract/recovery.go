package extract

import "strings"

// boundary is a point in the candidate after which the root could be closed
// without keeping a partially written element.
type boundary struct {
	offset  int    // exclusive end of the kept prefix
	closers string // syntax that closes every container still open, innermost first
}

// elementBoundaries re-scans the candidate and records every position where
// the root holds only complete elements: right after a nested container
// closes back to depth 1, and right before a comma at depth 1. For object
// roots the same rule lands on complete "key": value pairs.
func elementBoundaries(text string, c Candidate) []boundary {
	var (
		stack  []byte
		bounds []boundary
	)

	add := func(offset int) {
		if n := len(bounds); n > 0 && strings.TrimSpace(text[bounds[n-1].offset:offset]) == "" {
			return
		}
		bounds = append(bounds, boundary{offset: offset, closers: closers(stack)})
	}

	scanStructural(text, c.Start, func(i int, ch byte) bool {
		if i >= c.End {
			return false
		}
		switch ch {
		case '[', '{':
			stack = append(stack, ch)
		case ']', '}':
			if len(stack) == 0 {
				return false
			}
			stack = stack[:len(stack)-1]
			switch len(stack) {
			case 0:
				return false
			case 1:
				add(i + 1)
			}
		case ',':
			if len(stack) == 1 {
				add(i)
			}
		}
		return true
	})

	return bounds
}

func closers(stack []byte) string {
	var b strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(closerFor(stack[i]))
	}
	return b.String()
}

// recoverPartial cuts an unbalanced candidate back to its last complete
// element and closes it. Boundaries are tried newest first; when a prefix
// fails with a syntax error, boundaries at or past the error are skipped
// since they contain the same defect.
func recoverPartial(text string, c Candidate) (outcome, bool) {
	bounds := elementBoundaries(text, c)

	for i := len(bounds) - 1; i >= 0; i-- {
		b := bounds[i]
		prefix := strings.TrimRight(text[c.Start:b.offset], " \t\r\n")
		repaired := prefix + b.closers

		value, err := parseContainer(repaired)
		if err == nil {
			return outcome{
				value:    value,
				json:     repaired,
				warnings: []Warning{WarningTruncationFixed},
			}, true
		}

		if off := syntaxErrorOffset(err); off >= 0 {
			for i > 0 && int64(bounds[i-1].offset-c.Start) > off {
				i--
			}
		}
	}

	return outcome{}, false
}
