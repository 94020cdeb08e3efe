// Package middleware implements the onion-model chain wrapped around
// command invocation. Middlewares see the call after envelope parsing and
// before result encoding, so they can observe or veto invocations without
// touching wire concerns.
package middleware

import (
	"context"
	"reflect"
)

// Call is one command invocation entering the chain. Params is the raw JSON
// parameter payload as received.
type Call struct {
	Command string
	Params  []byte
}

// Result is the outcome of an invocation. Type carries the declared result
// type key for the encoder; nil means the command returns nothing.
type Result struct {
	Value any
	Type  reflect.Type
	Err   error
}

// HandlerFunc is the invocation signature middlewares wrap.
type HandlerFunc func(ctx context.Context, call *Call) *Result

// Middleware wraps a handler with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares into one. Chain(A, B, C)(h) runs
// A.before → B.before → C.before → h → C.after → B.after → A.after.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
