// Package parse converts model output into typed Go values.
//
// Scalars (string, bool, integers, floats) are parsed directly with strconv.
// Composite targets (structs, maps, slices) are decoded from the text as is
// and, when that fails, from the value recovered by the extract engine. A
// last pass unwraps {"type": ..., "value": ...} envelopes, which models
// produce when they echo a schema instead of filling it in.
//
// [ResultAs] decodes an extract.Result that the caller already holds, so
// warnings and diagnostics stay available alongside the typed value.
package parse
