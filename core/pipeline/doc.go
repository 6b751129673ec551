// Package pipeline runs a document through the extraction flow page by page:
// page text, prompt, completion, extraction engine, merged records.
//
// Pages are processed concurrently up to a limit. A page whose reply cannot be
// repaired is reported as failed without stopping the run; a transport error
// (the provider could not be reached or kept refusing) aborts it.
package pipeline
