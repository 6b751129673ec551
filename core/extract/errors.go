package extract

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrorKind classifies why an extraction failed.
type ErrorKind int

const (
	// NoStructureFound: the normalized text contains no '[' or '{' at all.
	NoStructureFound ErrorKind = iota
	// UnbalancedUnrecoverable: truncation was detected but neither partial
	// recovery nor any other strategy produced a parseable value.
	UnbalancedUnrecoverable
	// StrictParseError: a complete-looking structure has a syntax error that
	// no strategy could fix.
	StrictParseError
	// AllStrategiesExhausted: generic classification when none of the more
	// specific kinds applies.
	AllStrategiesExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case NoStructureFound:
		return "no_structure_found"
	case UnbalancedUnrecoverable:
		return "unbalanced_unrecoverable"
	case StrictParseError:
		return "strict_parse_error"
	default:
		return "all_strategies_exhausted"
	}
}

// Sentinel errors matching each ErrorKind. A failed Result's error unwraps to
// one of these, so callers can branch with [errors.Is]:
//
//	if errors.Is(res.Err(), extract.ErrUnbalancedUnrecoverable) {
//	    // ask the model for a shorter response
//	}
var (
	ErrNoStructureFound        = errors.New("extract: no JSON structure found")
	ErrUnbalancedUnrecoverable = errors.New("extract: truncated JSON could not be recovered")
	ErrStrictParse             = errors.New("extract: malformed JSON could not be repaired")
	ErrAllStrategiesExhausted  = errors.New("extract: all recovery strategies exhausted")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case NoStructureFound:
		return ErrNoStructureFound
	case UnbalancedUnrecoverable:
		return ErrUnbalancedUnrecoverable
	case StrictParseError:
		return ErrStrictParse
	default:
		return ErrAllStrategiesExhausted
	}
}

const (
	excerptHead      = 300
	excerptTail      = 300
	excerptSeparator = " … "
)

// Diagnostic describes a failed extraction for operators. The excerpt is
// bounded regardless of input size.
type Diagnostic struct {
	Kind ErrorKind

	// Cause is the last strict-parse error observed, if any.
	Cause error

	// Excerpt holds at most the first and last ~300 bytes of the normalized text.
	Excerpt string

	// Length is the byte length of the normalized text.
	Length int
}

func (d *Diagnostic) Error() string {
	if d.Cause != nil {
		return fmt.Sprintf("%v (%d bytes): %v", d.Kind.sentinel(), d.Length, d.Cause)
	}
	return fmt.Sprintf("%v (%d bytes)", d.Kind.sentinel(), d.Length)
}

// Unwrap returns the sentinel matching d.Kind.
func (d *Diagnostic) Unwrap() error {
	return d.Kind.sentinel()
}

func newDiagnostic(kind ErrorKind, text string, cause error) *Diagnostic {
	return &Diagnostic{
		Kind:    kind,
		Cause:   cause,
		Excerpt: excerpt(text),
		Length:  len(text),
	}
}

// excerpt keeps the head and tail of text, cutting on rune boundaries.
func excerpt(text string) string {
	if len(text) <= excerptHead+excerptTail {
		return text
	}

	head := excerptHead
	for head > 0 && !utf8.RuneStart(text[head]) {
		head--
	}
	tail := len(text) - excerptTail
	for tail < len(text) && !utf8.RuneStart(text[tail]) {
		tail++
	}
	return text[:head] + excerptSeparator + text[tail:]
}
