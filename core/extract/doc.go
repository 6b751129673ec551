// Package extract turns noisy LLM completion text into a best-effort JSON value
// plus a signal describing how much the text had to be repaired.
//
// Completions asked to "reformat this page as JSON" rarely come back as clean
// JSON. They are wrapped in markdown fences, prefixed with chatter, sprinkled
// with trailing commas or unquoted keys, and cut off mid-record when the model
// hits its output cap. [Extract] runs a fixed pipeline over such text:
//
//  1. [Normalize] strips fences, emphasis markers and conversational lead-ins.
//  2. The whole normalized text is strict-parsed.
//  3. The presumed JSON root is located with an escape-aware bracket scanner
//     and strict-parsed on its own.
//  4. Truncation is detected from the finish reason and bracket balance.
//  5. An ordered chain of repair strategies runs until one yields text that
//     strict-parses.
//
// The outcome is a [Result] tagged [StatusComplete], [StatusRecovered] (with the
// ordered [Warning] list of repairs that fired) or [StatusFailed] (with a
// [Diagnostic] carrying a classified [ErrorKind] and a bounded excerpt).
//
// Truncated arrays are cut back to their last complete element: data is
// dropped, never guessed. Scalar roots are only ever produced by a direct
// strict parse and are never subject to repair.
//
// The engine performs no I/O and keeps no state between calls; an [Extractor]
// is safe for concurrent use.
//
// Example:
//
//	res := extract.Extract(extract.RawCompletion{
//	    Text:         "Here is the json:\n```json\n[{\"a\":1}]\n```",
//	    FinishReason: extract.FinishStop,
//	})
//	if err := res.Err(); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.JSON) // [{"a":1}]
package extract
