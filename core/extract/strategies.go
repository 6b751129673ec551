package extract

import (
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// maxSpanAttempts bounds how many spans the array-pattern strategy will
// strict-parse before giving up.
const maxSpanAttempts = 1024

// attempt is the read-only input every strategy receives.
type attempt struct {
	text      string // normalized text
	candidate Candidate
	truncated bool
}

// outcome is a successful strategy result: the parsed value, the exact text
// that parsed and the repairs applied to get there.
type outcome struct {
	value    any
	json     string
	warnings []Warning
}

// strategy is one step of the fallback chain. apply must not panic and must
// report failure through its boolean result.
type strategy struct {
	name  string
	apply func(a attempt) (outcome, bool)
}

// Strategy names, reported in Result.Strategy.
const (
	StrategyTruncationRecovery  = "truncation_recovery"
	StrategyArrayPattern        = "array_pattern"
	StrategyFirstObject         = "first_object"
	StrategySyntaxNormalization = "syntax_normalization"
	StrategySuffixTrimming      = "suffix_trimming"
	StrategyLibraryRepair       = "library_repair"
)

func defaultStrategies(libraryRepair bool) []strategy {
	chain := []strategy{
		{name: StrategyTruncationRecovery, apply: truncationRecovery},
		{name: StrategyArrayPattern, apply: arrayPattern},
		{name: StrategyFirstObject, apply: firstObject},
		{name: StrategySyntaxNormalization, apply: syntaxNormalization},
		{name: StrategySuffixTrimming, apply: suffixTrimming},
	}
	if libraryRepair {
		chain = append(chain, strategy{name: StrategyLibraryRepair, apply: libraryRepairStrategy})
	}
	return chain
}

func truncationRecovery(a attempt) (outcome, bool) {
	if !a.truncated {
		return outcome{}, false
	}
	return recoverPartial(a.text, a.candidate)
}

// arrayPattern tries every "[ { ... } ]" shaped span of the text, earliest
// start first and, for one start, longest span first.
func arrayPattern(a attempt) (outcome, bool) {
	text := a.text

	var starts, ends []int
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			if next := nextSignificant(text, i+1); next >= 0 && text[next] == '{' {
				starts = append(starts, i)
			}
		case ']':
			if prev := prevSignificant(text, i-1); prev >= 0 && text[prev] == '}' {
				ends = append(ends, i)
			}
		}
	}

	attempts := 0
	for _, start := range starts {
		for k := len(ends) - 1; k >= 0 && ends[k] > start; k-- {
			if attempts >= maxSpanAttempts {
				return outcome{}, false
			}
			attempts++

			span := text[start : ends[k]+1]
			if value, err := parseContainer(span); err == nil {
				return outcome{value: value, json: span, warnings: []Warning{WarningArrayPatternExtracted}}, true
			}
		}
	}
	return outcome{}, false
}

// firstObject tries the shortest "{ ... }" span starting at the first '{'.
func firstObject(a attempt) (outcome, bool) {
	start := strings.IndexByte(a.text, '{')
	if start < 0 {
		return outcome{}, false
	}
	end := strings.IndexByte(a.text[start:], '}')
	if end < 0 {
		return outcome{}, false
	}

	span := a.text[start : start+end+1]
	value, err := parseContainer(span)
	if err != nil {
		return outcome{}, false
	}
	return outcome{value: value, json: span, warnings: []Warning{WarningFirstObjectExtracted}}, true
}

// syntaxNormalization rewrites lax syntax in the candidate and re-parses it.
// When truncation was flagged the rewritten text also gets a partial
// recovery pass.
func syntaxNormalization(a attempt) (outcome, bool) {
	fixed, warnings := normalizeSyntax(a.candidate.Slice(a.text))
	if len(warnings) == 0 {
		return outcome{}, false
	}

	if value, err := parseContainer(fixed); err == nil {
		return outcome{value: value, json: fixed, warnings: warnings}, true
	}

	if !a.truncated {
		return outcome{}, false
	}
	// fixed starts at the candidate's opener.
	partial, ok := recoverPartial(fixed, locateFrom(fixed, 0, a.candidate.Kind))
	if !ok {
		return outcome{}, false
	}
	partial.warnings = append(warnings, partial.warnings...)
	return partial, true
}

// suffixTrimming keeps the text from the first bracket and cuts it back at
// successive closing brackets outside string literals, longest first. A
// syntax error at offset n rules out every cut longer than n, so those are
// skipped.
func suffixTrimming(a attempt) (outcome, bool) {
	text := a.text
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return outcome{}, false
	}

	var ends []int
	scanStructural(text, start+1, func(i int, c byte) bool {
		if c == ']' || c == '}' {
			ends = append(ends, i)
		}
		return true
	})

	for k := len(ends) - 1; k >= 0; k-- {
		span := text[start : ends[k]+1]
		value, err := parseContainer(span)
		if err == nil {
			return outcome{value: value, json: span, warnings: []Warning{WarningSuffixTrimmed}}, true
		}
		if off := syntaxErrorOffset(err); off >= 0 {
			for k > 0 && int64(ends[k-1]-start+1) > off {
				k--
			}
		}
	}
	return outcome{}, false
}

// libraryRepairStrategy hands the candidate to jsonrepair. It never runs on
// truncated input, where it would invent the missing tail of a record.
func libraryRepairStrategy(a attempt) (o outcome, ok bool) {
	defer func() {
		if recover() != nil {
			o, ok = outcome{}, false
		}
	}()

	if a.truncated {
		return outcome{}, false
	}
	repaired, err := jsonrepair.JSONRepair(a.candidate.Slice(a.text))
	if err != nil {
		return outcome{}, false
	}
	value, err := parseContainer(repaired)
	if err != nil {
		return outcome{}, false
	}
	return outcome{value: value, json: repaired, warnings: []Warning{WarningLibraryRepaired}}, true
}

func nextSignificant(text string, from int) int {
	for i := from; i < len(text); i++ {
		if !isSpace(text[i]) {
			return i
		}
	}
	return -1
}

func prevSignificant(text string, from int) int {
	for i := from; i >= 0; i-- {
		if !isSpace(text[i]) {
			return i
		}
	}
	return -1
}
