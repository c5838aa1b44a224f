// Package tracertest provides a Tracer that keeps finished spans in memory.
package tracertest

import (
	"context"
	"sync"

	"inkwell/pkg/platform/tracer"
)

// FinishedSpan is a span that has been ended.
type FinishedSpan struct {
	Name   string
	Attrs  map[string]any
	Events []string
	Err    error
}

// Recorder records every span it starts once End is called.
type Recorder struct {
	mu    sync.Mutex
	spans []FinishedSpan
}

func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Start(ctx context.Context, name string, attrs ...tracer.Attribute) (context.Context, tracer.Span) {
	s := &span{rec: r, name: name, attrs: map[string]any{}}
	s.SetAttributes(attrs...)
	return ctx, s
}

// Spans returns the finished spans in completion order.
func (r *Recorder) Spans() []FinishedSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FinishedSpan(nil), r.spans...)
}

// Named returns the finished spans called name.
func (r *Recorder) Named(name string) []FinishedSpan {
	var out []FinishedSpan
	for _, s := range r.Spans() {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

type span struct {
	rec    *Recorder
	mu     sync.Mutex
	name   string
	attrs  map[string]any
	events []string
}

func (s *span) End(err error) {
	s.mu.Lock()
	done := FinishedSpan{Name: s.name, Attrs: s.attrs, Events: s.events, Err: err}
	s.mu.Unlock()

	s.rec.mu.Lock()
	defer s.rec.mu.Unlock()
	s.rec.spans = append(s.rec.spans, done)
}

func (s *span) SetAttributes(attrs ...tracer.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range attrs {
		s.attrs[a.Key] = a.Value
	}
}

func (s *span) AddEvent(name string, _ ...tracer.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
}

var _ tracer.Tracer = (*Recorder)(nil)
