package extract

import (
	"regexp"
	"strings"
)

var (
	// Non-greedy and non-nested; RE2 guarantees linear matching.
	emphasisPattern = regexp.MustCompile(`\*\*([^\n]+?)\*\*`)

	fenceLinePattern = regexp.MustCompile("^\\s*```[\\w.+-]*\\s*$")

	leadInPattern = regexp.MustCompile(`(?is)^(?:json\b\s*)?(?:here\s+(?:is|are)\s+the\s+(?:json|data|result|output)\s*:\s*)?`)
)

// Normalize strips markdown fencing, emphasis markers and a conversational
// prefix from raw completion text. The result is a fixed point:
// Normalize(Normalize(x)) == Normalize(x) for every x.
func Normalize(raw string) string {
	text := raw
	for {
		next := normalizePass(text)
		if next == text {
			return next
		}
		// Every effective pass shrinks the text, so this terminates.
		text = next
	}
}

func normalizePass(text string) string {
	text = strings.TrimSpace(text)
	text = emphasisPattern.ReplaceAllString(text, "$1")
	text = dropFenceLines(text)
	text = strings.TrimSpace(text)
	if loc := leadInPattern.FindStringIndex(text); loc != nil && loc[1] > 0 {
		text = text[loc[1]:]
	}
	return strings.TrimSpace(text)
}

func dropFenceLines(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if fenceLinePattern.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
