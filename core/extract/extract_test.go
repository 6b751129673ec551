package extract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/docextract/providers/observability"
	"github.com/leofalp/docextract/providers/observability/slogobs"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		raw          RawCompletion
		wantStatus   Status
		wantValue    string
		wantWarnings []Warning
		wantStrategy string
		wantTrimmed  bool
		wantKind     ErrorKind
	}{
		{
			name:       "plain array",
			raw:        RawCompletion{Text: `[{"a":1}]`, FinishReason: FinishStop},
			wantStatus: StatusComplete,
			wantValue:  `[{"a":1}]`,
		},
		{
			name:       "scalar root parses directly",
			raw:        RawCompletion{Text: `42`, FinishReason: FinishStop},
			wantStatus: StatusComplete,
			wantValue:  `42`,
		},
		{
			name:        "prose and fences",
			raw:         RawCompletion{Text: "Here is the json:\n```json\n[{\"a\":1}]\n```\nThanks", FinishReason: FinishStop},
			wantStatus:  StatusComplete,
			wantValue:   `[{"a":1}]`,
			wantTrimmed: true,
		},
		{
			name:        "bracket inside string value",
			raw:         RawCompletion{Text: `Result: [{"note":"array is [done]"}] ok`, FinishReason: FinishStop},
			wantStatus:  StatusComplete,
			wantValue:   `[{"note":"array is [done]"}]`,
			wantTrimmed: true,
		},
		{
			name:        "complete despite length cap",
			raw:         RawCompletion{Text: `[{"a":1},{"a":2}] and then`, FinishReason: FinishLength},
			wantStatus:  StatusComplete,
			wantValue:   `[{"a":1},{"a":2}]`,
			wantTrimmed: true,
		},
		{
			name:         "truncated array",
			raw:          RawCompletion{Text: `[{"a":1},{"a":2},{"b":`, FinishReason: FinishLength},
			wantStatus:   StatusRecovered,
			wantValue:    `[{"a":1},{"a":2}]`,
			wantWarnings: []Warning{WarningTruncationFixed},
			wantStrategy: StrategyTruncationRecovery,
		},
		{
			name:         "unbalanced despite stop",
			raw:          RawCompletion{Text: "```json\n[{\"a\":1},{\"a\":", FinishReason: FinishStop},
			wantStatus:   StatusRecovered,
			wantValue:    `[{"a":1}]`,
			wantWarnings: []Warning{WarningTruncationFixed},
			wantStrategy: StrategyTruncationRecovery,
		},
		{
			name:         "combined defect resolved by syntax normalization",
			raw:          RawCompletion{Text: `[{name: "Alice", "age": 30,}]`, FinishReason: FinishStop},
			wantStatus:   StatusRecovered,
			wantValue:    `[{"name": "Alice", "age": 30}]`,
			wantWarnings: []Warning{WarningTrailingCommaRemoved, WarningKeyQuoted},
			wantStrategy: StrategySyntaxNormalization,
		},
		{
			name:         "array pattern after a stray bracket",
			raw:          RawCompletion{Text: `[note] [{"a":1}]`, FinishReason: FinishStop},
			wantStatus:   StatusRecovered,
			wantValue:    `[{"a":1}]`,
			wantWarnings: []Warning{WarningArrayPatternExtracted},
			wantStrategy: StrategyArrayPattern,
		},
		{
			name:         "first object after a stray bracket",
			raw:          RawCompletion{Text: `see [x] {"a":1}`, FinishReason: FinishStop},
			wantStatus:   StatusRecovered,
			wantValue:    `{"a":1}`,
			wantWarnings: []Warning{WarningFirstObjectExtracted},
			wantStrategy: StrategyFirstObject,
		},
		{
			name:       "empty",
			raw:        RawCompletion{Text: "", FinishReason: FinishStop},
			wantStatus: StatusFailed,
			wantKind:   NoStructureFound,
		},
		{
			name:       "whitespace only",
			raw:        RawCompletion{Text: " \n\t", FinishReason: FinishLength},
			wantStatus: StatusFailed,
			wantKind:   NoStructureFound,
		},
		{
			name:       "unmatched quote without brackets",
			raw:        RawCompletion{Text: `"abc`, FinishReason: FinishStop},
			wantStatus: StatusFailed,
			wantKind:   NoStructureFound,
		},
		{
			name:       "unmatched quote inside array",
			raw:        RawCompletion{Text: `[{"a": "abc`, FinishReason: FinishStop},
			wantStatus: StatusFailed,
			wantKind:   UnbalancedUnrecoverable,
		},
		{
			name:       "truncated before first record completes",
			raw:        RawCompletion{Text: `[{"a": tru}, {"b":`, FinishReason: FinishLength},
			wantStatus: StatusFailed,
			wantKind:   UnbalancedUnrecoverable,
		},
		{
			name:       "balanced but malformed",
			raw:        RawCompletion{Text: `[{"a": tru}]`, FinishReason: FinishStop},
			wantStatus: StatusFailed,
			wantKind:   StrictParseError,
		},
		{
			name:       "content filter counts as truncation",
			raw:        RawCompletion{Text: `[{"a": tru}]`, FinishReason: FinishContentFilter},
			wantStatus: StatusFailed,
			wantKind:   UnbalancedUnrecoverable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.raw)

			if got.Status != tt.wantStatus {
				t.Fatalf("Status = %v, want %v (diagnostic: %v)", got.Status, tt.wantStatus, got.Err())
			}

			switch got.Status {
			case StatusFailed:
				if got.Diagnostic == nil {
					t.Fatal("failed result without diagnostic")
				}
				if got.Diagnostic.Kind != tt.wantKind {
					t.Errorf("Kind = %v, want %v", got.Diagnostic.Kind, tt.wantKind)
				}
				if got.Value != nil || got.JSON != "" {
					t.Errorf("failed result carries a value: %v %q", got.Value, got.JSON)
				}
			default:
				if diff := cmp.Diff(decode(t, tt.wantValue), got.Value); diff != "" {
					t.Errorf("value mismatch (-want +got):\n%s", diff)
				}
				if diff := cmp.Diff(tt.wantWarnings, got.Warnings); diff != "" {
					t.Errorf("warnings mismatch (-want +got):\n%s", diff)
				}
				if got.Strategy != tt.wantStrategy {
					t.Errorf("Strategy = %q, want %q", got.Strategy, tt.wantStrategy)
				}
				if got.Trimmed != tt.wantTrimmed {
					t.Errorf("Trimmed = %v, want %v", got.Trimmed, tt.wantTrimmed)
				}
				if got.Err() != nil {
					t.Errorf("Err() = %v, want nil", got.Err())
				}
			}
		})
	}
}

func TestExtract_RecoveredRootIsContainer(t *testing.T) {
	inputs := []string{
		`[1, 2, 3`,
		`{"a": 1, "b": "x`,
		`noise [{"a":1}, {"b":`,
		`[{'a': 1}, {'b': 2},]`,
	}
	for _, input := range inputs {
		got := Extract(RawCompletion{Text: input, FinishReason: FinishLength})
		if got.Status != StatusRecovered {
			t.Errorf("%q: Status = %v, want recovered", input, got.Status)
			continue
		}
		if !isContainer(got.Value) {
			t.Errorf("%q: recovered root is %T", input, got.Value)
		}
	}
}

func TestExtract_LibraryRepairOptIn(t *testing.T) {
	raw := RawCompletion{Text: `[{"a": 1 "b": 2}]`, FinishReason: FinishStop}

	without := New().Extract(context.Background(), raw)
	if without.Status != StatusFailed || without.Diagnostic.Kind != StrictParseError {
		t.Fatalf("without library repair: Status = %v, diagnostic = %v", without.Status, without.Err())
	}

	with := New(WithLibraryRepair()).Extract(context.Background(), raw)
	if with.Status != StatusRecovered {
		t.Fatalf("with library repair: Status = %v (%v)", with.Status, with.Err())
	}
	if with.Strategy != StrategyLibraryRepair {
		t.Errorf("Strategy = %q, want %q", with.Strategy, StrategyLibraryRepair)
	}
	if diff := cmp.Diff(decode(t, `[{"a": 1, "b": 2}]`), with.Value); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_Incomplete(t *testing.T) {
	truncated := Extract(RawCompletion{Text: `[{"a":1},{"a":`, FinishReason: FinishLength})
	if !truncated.Incomplete() {
		t.Error("truncation-fixed result should be incomplete")
	}

	fixed := Extract(RawCompletion{Text: `[{a: 1}]`, FinishReason: FinishStop})
	if fixed.Status != StatusRecovered || fixed.Incomplete() {
		t.Errorf("syntax-only recovery should not be incomplete: %+v", fixed)
	}
}

func TestExtract_ExcerptBounded(t *testing.T) {
	text := strings.Repeat("[oops] ", 50000/7+1)[:50000]
	got := Extract(RawCompletion{Text: text, FinishReason: FinishStop})

	if got.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", got.Status)
	}
	d := got.Diagnostic
	if d.Length != len(Normalize(text)) {
		t.Errorf("Length = %d, want %d", d.Length, len(Normalize(text)))
	}
	if n := len(d.Excerpt); n > excerptHead+excerptTail+len(excerptSeparator) {
		t.Errorf("excerpt is %d bytes", n)
	}
	if !strings.Contains(d.Excerpt, excerptSeparator) {
		t.Error("long excerpt should mark the elided middle")
	}
}

func TestExcerpt(t *testing.T) {
	short := strings.Repeat("a", 600)
	if got := excerpt(short); got != short {
		t.Error("text within the bound should be returned whole")
	}

	long := strings.Repeat("é", 400) // 800 bytes, two per rune
	got := excerpt(long)
	if !strings.HasPrefix(got, strings.Repeat("é", 150)+excerptSeparator) {
		t.Errorf("head not cut on a rune boundary: %q", got[:20])
	}
	if !strings.HasSuffix(got, excerptSeparator+strings.Repeat("é", 150)) {
		t.Error("tail not cut on a rune boundary")
	}
}

func TestExtract_NeverPanics(t *testing.T) {
	inputs := []string{
		"", " ", `"`, `\`, `[`, `]`, `{`, `}`, `[[[[`, `]]]]`, `{"`, `["\`, `[{"a":"\"}]`,
		`'`, `{'a`, `[,]`, `{,}`, `[{},]`, "```", "**", "json", "\x00[\x00",
		strings.Repeat("[", 5000), strings.Repeat(`{"a":`, 2000), strings.Repeat(`[{"a":1},`, 3000),
	}
	reasons := []FinishReason{FinishStop, FinishLength, FinishContentFilter, FinishOther}
	extractor := New(WithLibraryRepair())

	for _, input := range inputs {
		for _, reason := range reasons {
			got := extractor.Extract(context.Background(), RawCompletion{Text: input, FinishReason: reason})
			if got.Status == StatusFailed && got.Diagnostic == nil {
				t.Errorf("%q/%s: failed without diagnostic", input, reason)
			}
			if got.Status == StatusRecovered && !isContainer(got.Value) {
				t.Errorf("%q/%s: recovered scalar %v", input, reason, got.Value)
			}
		}
	}
}

func TestDiagnostic_Unwrap(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want error
	}{
		{NoStructureFound, ErrNoStructureFound},
		{UnbalancedUnrecoverable, ErrUnbalancedUnrecoverable},
		{StrictParseError, ErrStrictParse},
		{AllStrategiesExhausted, ErrAllStrategiesExhausted},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			res := failed(newDiagnostic(tt.kind, "text", errors.New("cause")))
			if !errors.Is(res.Err(), tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", res.Err(), tt.want)
			}
			if !strings.Contains(res.Err().Error(), "cause") {
				t.Errorf("error message %q lacks the cause", res.Err())
			}
		})
	}
}

func TestClassify(t *testing.T) {
	syntaxErr := func() error {
		_, err := strictParse(`[1,]`)
		return err
	}()

	if got := classify(true, syntaxErr); got != UnbalancedUnrecoverable {
		t.Errorf("truncated: %v", got)
	}
	if got := classify(false, syntaxErr); got != StrictParseError {
		t.Errorf("syntax error: %v", got)
	}
	if got := classify(false, errTrailingData); got != AllStrategiesExhausted {
		t.Errorf("other error: %v", got)
	}
}

func TestParseFinishReason(t *testing.T) {
	tests := map[string]FinishReason{
		"stop":           FinishStop,
		" STOP ":         FinishStop,
		"end_turn":       FinishStop,
		"length":         FinishLength,
		"MAX_TOKENS":     FinishLength,
		"content_filter": FinishContentFilter,
		"SAFETY":         FinishContentFilter,
		"tool_calls":     FinishOther,
		"":               FinishOther,
	}
	for input, want := range tests {
		if got := ParseFinishReason(input); got != want {
			t.Errorf("ParseFinishReason(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtractor_ReportsToObserver(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(
		slogobs.WithOutput(&buf),
		slogobs.WithFormat(slogobs.FormatCompact),
		slogobs.WithLevel(slog.LevelDebug),
	)
	extractor := New(WithObserver(observer))
	ctx := context.Background()

	extractor.Extract(ctx, RawCompletion{Text: `[{"a":1}]`, FinishReason: FinishStop})
	extractor.Extract(ctx, RawCompletion{Text: `[{"a":1},{"a":`, FinishReason: FinishLength})
	extractor.Extract(ctx, RawCompletion{Text: `nothing`, FinishReason: FinishStop})

	if got := observer.CounterValue(observability.MetricExtractResults); got != 3 {
		t.Errorf("results counter = %d, want 3", got)
	}
	out := buf.String()
	for _, want := range []string{
		"extraction complete",
		"extraction recovered",
		`"extract.strategy":"truncation_recovery"`,
		"extraction failed",
		`"extract.error_kind":"no_structure_found"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s", want)
		}
	}
}

func TestExtractor_WithObjectRoot(t *testing.T) {
	raw := RawCompletion{Text: `{name: "x", tags: ["a", "b"]}`, FinishReason: FinishStop}

	listFirst := New().Extract(context.Background(), raw)
	if listFirst.Status != StatusComplete || !listFirst.Trimmed {
		t.Fatalf("default extractor: %+v", listFirst)
	}
	if diff := cmp.Diff(decode(t, `["a", "b"]`), listFirst.Value); diff != "" {
		t.Errorf("default extractor should prefer the array (-want +got):\n%s", diff)
	}

	objectFirst := New(WithObjectRoot()).Extract(context.Background(), raw)
	if objectFirst.Status != StatusRecovered {
		t.Fatalf("object-first extractor: Status = %v (%v)", objectFirst.Status, objectFirst.Err())
	}
	if diff := cmp.Diff(decode(t, `{"name": "x", "tags": ["a", "b"]}`), objectFirst.Value); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractor_ObjectRootTruncation(t *testing.T) {
	raw := RawCompletion{Text: `{"a": 1, "b": [1, 2], "c": "tru`, FinishReason: FinishLength}

	res := New(WithObjectRoot()).Extract(context.Background(), raw)
	if res.Status != StatusRecovered || res.Strategy != StrategyTruncationRecovery {
		t.Fatalf("Status = %v, Strategy = %q (%v)", res.Status, res.Strategy, res.Err())
	}
	if diff := cmp.Diff(decode(t, `{"a": 1, "b": [1, 2]}`), res.Value); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
	if !res.Incomplete() {
		t.Error("Incomplete() = false, want true")
	}

	// The default locator prefers the first '[', which here is a complete
	// nested array.
	listFirst := New().Extract(context.Background(), raw)
	if listFirst.Status != StatusComplete || !listFirst.Trimmed {
		t.Fatalf("default extractor: %+v", listFirst)
	}
	if diff := cmp.Diff(decode(t, `[1, 2]`), listFirst.Value); diff != "" {
		t.Errorf("default extractor value mismatch (-want +got):\n%s", diff)
	}
}
