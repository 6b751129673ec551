package extract

import "strings"

// FinishReason reports why the completion provider stopped generating.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"           // Generation ended naturally
	FinishLength        FinishReason = "length"         // Output-length cap reached
	FinishContentFilter FinishReason = "content_filter" // Output withheld or cut by a safety filter
	FinishOther         FinishReason = "other"          // Anything else, including unknown
)

// ParseFinishReason maps a provider-specific finish reason onto the four
// values the engine understands. Matching is case-insensitive. Unknown and
// empty values map to [FinishOther], which is treated as a truncation signal.
func ParseFinishReason(s string) FinishReason {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stop", "end_turn", "stop_sequence", "eos":
		return FinishStop
	case "length", "max_tokens", "max_output_tokens":
		return FinishLength
	case "content_filter", "safety", "recitation", "blocklist", "prohibited_content":
		return FinishContentFilter
	default:
		return FinishOther
	}
}

// RawCompletion is the unprocessed model output together with the finish
// reason reported by the provider.
type RawCompletion struct {
	Text         string
	FinishReason FinishReason
}

// Kind is the JSON container type a candidate is rooted at.
type Kind int

const (
	KindArray Kind = iota
	KindObject
)

func (k Kind) String() string {
	if k == KindObject {
		return "object"
	}
	return "array"
}

func (k Kind) open() byte {
	if k == KindObject {
		return '{'
	}
	return '['
}

func (k Kind) close() byte {
	if k == KindObject {
		return '}'
	}
	return ']'
}

// Candidate is the located region of the normalized text presumed to hold the
// JSON root. Start and End are byte offsets with Start < End <= len(text).
type Candidate struct {
	Start    int
	End      int
	Kind     Kind
	Balanced bool
}

// Slice returns the candidate's region of text.
func (c Candidate) Slice(text string) string {
	return text[c.Start:c.End]
}

// Warning identifies a repair that was applied to produce a Recovered result.
type Warning string

const (
	WarningTruncationFixed       Warning = "truncation_fixed"
	WarningArrayPatternExtracted Warning = "array_pattern_extracted"
	WarningFirstObjectExtracted  Warning = "first_object_extracted"
	WarningTrailingCommaRemoved  Warning = "trailing_comma_removed"
	WarningKeyQuoted             Warning = "key_quoted"
	WarningQuoteNormalized       Warning = "quote_normalized"
	WarningSuffixTrimmed         Warning = "suffix_trimmed"
	WarningLibraryRepaired       Warning = "library_repaired"
)

// Status tags which variant a Result holds.
type Status int

const (
	StatusComplete Status = iota
	StatusRecovered
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusRecovered:
		return "recovered"
	default:
		return "failed"
	}
}

// Result is the outcome of one engine invocation.
//
// Exactly one of the following shapes holds:
//   - StatusComplete: Value and JSON are set, Warnings is empty.
//   - StatusRecovered: Value and JSON are set, Warnings lists the repairs in
//     the order they were applied. Value is always an array or object.
//   - StatusFailed: Diagnostic is set, Value is nil and JSON is empty.
type Result struct {
	Status     Status
	Value      any
	JSON       string
	Warnings   []Warning
	Diagnostic *Diagnostic

	// Trimmed is true for a Complete result that was parsed from the located
	// candidate rather than from the whole normalized text.
	Trimmed bool

	// Strategy names the fallback strategy that produced a Recovered result.
	Strategy string
}

// Err returns the diagnostic of a Failed result and nil otherwise.
func (r Result) Err() error {
	if r.Status != StatusFailed || r.Diagnostic == nil {
		return nil
	}
	return r.Diagnostic
}

// Incomplete reports whether the caller should surface a "data may be
// incomplete" notice.
func (r Result) Incomplete() bool {
	return r.Status == StatusRecovered && r.HasWarning(WarningTruncationFixed)
}

// HasWarning reports whether w is among the result's warnings.
func (r Result) HasWarning(w Warning) bool {
	for _, got := range r.Warnings {
		if got == w {
			return true
		}
	}
	return false
}

func complete(value any, raw string, trimmed bool) Result {
	return Result{Status: StatusComplete, Value: value, JSON: raw, Trimmed: trimmed}
}

func recovered(strategy string, o outcome) Result {
	warnings := make([]Warning, len(o.warnings))
	copy(warnings, o.warnings)
	return Result{
		Status:   StatusRecovered,
		Value:    o.value,
		JSON:     o.json,
		Warnings: warnings,
		Strategy: strategy,
	}
}

func failed(d *Diagnostic) Result {
	return Result{Status: StatusFailed, Diagnostic: d}
}
