// Package client sends extraction prompts to an [ai.Provider] through a
// middleware chain and hands the reply to the extraction engine.
//
// Middlewares wrap a [SendFunc]; the first one passed to [WithMiddleware] is
// the outermost. When [WithObserver] is set an observability middleware is
// prepended so it sees the final outcome after retries.
//
// [Client.Extract] returns the engine's tagged result alongside the raw
// provider response; [CompleteAs] decodes the reply into a Go value.
package client
