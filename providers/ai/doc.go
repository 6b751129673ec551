// Package ai defines the provider-neutral chat types used to ask a model for
// structured output. Provider packages such as openai map [ChatRequest] and
// [ChatResponse] to their own wire formats.
package ai
