// Package middleware provides the HTTP middleware stack and the cross-cutting
// handlers applied to every module: CORS policy, request logging, and bearer
// token authentication.
package middleware

import "net/http"

// Stack is an ordered collection of HTTP middleware. Middleware added first
// wraps outermost, so it runs first on the way in.
type Stack struct {
	stack []func(http.Handler) http.Handler
}

// New creates an empty middleware Stack.
func New() *Stack {
	return &Stack{}
}

// Use appends middleware to the stack.
func (s *Stack) Use(fn func(http.Handler) http.Handler) {
	s.stack = append(s.stack, fn)
}

// Apply wraps handler with the stack in registration order.
func (s *Stack) Apply(handler http.Handler) http.Handler {
	for i := len(s.stack) - 1; i >= 0; i-- {
		handler = s.stack[i](handler)
	}
	return handler
}
