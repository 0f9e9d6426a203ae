package provider

import (
	"context"
	"sync/atomic"
)

// GenerateFunc produces a reply for a prompt.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// Static is an in-process backend driven by a function, for wiring that must
// not reach a remote model.
type Static struct {
	name  string
	fn    GenerateFunc
	calls atomic.Int64
}

// NewStatic creates a backend named name that answers with fn.
func NewStatic(name string, fn GenerateFunc) *Static {
	return &Static{name: name, fn: fn}
}

// Name implements Backend.
func (s *Static) Name() string { return s.name }

// Generate implements Backend.
func (s *Static) Generate(ctx context.Context, prompt string, _ int, _ float32) (string, error) {
	s.calls.Add(1)
	return s.fn(ctx, prompt)
}

// Calls returns how many times Generate was invoked.
func (s *Static) Calls() int64 {
	return s.calls.Load()
}
