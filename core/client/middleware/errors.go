package middleware

import "errors"

// ErrRetryExhausted is wrapped into the error returned when every retry
// attempt failed. The last provider error is wrapped as well.
var ErrRetryExhausted = errors.New("docextract: all retry attempts exhausted")
