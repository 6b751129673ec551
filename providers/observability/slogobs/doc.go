// Package slogobs implements observability.Provider on top of log/slog.
//
// Spans and metric updates are emitted as DEBUG records; counters also keep
// their running totals in memory so a command can print a summary at exit
// (see [Observer.CounterValue]). Output format and level come from
// DOCEXTRACT_LOG_FORMAT and DOCEXTRACT_LOG_LEVEL unless overridden with
// [WithFormat] or [WithLevel].
package slogobs
