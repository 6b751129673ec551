// Package utils holds small helpers shared by the providers: a JSON POST
// round-trip with a typed error for non-2xx replies, and [Ptr].
package utils
