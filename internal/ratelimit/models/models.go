package models

import (
	"fmt"
	"math"
	"time"
)

// Scope names a family of routes that share one rate budget.
type Scope string

const (
	ScopeAuth         Scope = "auth"
	ScopeAIGeneration Scope = "ai-generation"
	ScopeBookCreation Scope = "book-creation"
	ScopeGeneralAPI   Scope = "general-api"
)

// Scopes lists every scope in configuration order.
var Scopes = []Scope{ScopeAuth, ScopeAIGeneration, ScopeBookCreation, ScopeGeneralAPI}

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	for _, scope := range Scopes {
		if string(scope) == s {
			return scope, nil
		}
	}
	return "", fmt.Errorf("unknown rate limit scope %q", s)
}

// Limit is the (window, max) budget of a scope.
type Limit struct {
	Window time.Duration
	Max    int
	// FailClosed rejects instead of admitting when the shared store cannot answer.
	FailClosed bool
}

// Validate rejects budgets that could never admit or never expire.
func (l Limit) Validate() error {
	if l.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", l.Window)
	}
	if l.Max <= 0 {
		return fmt.Errorf("max must be positive, got %d", l.Max)
	}
	return nil
}

// Result is the outcome of one admission check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
	// Degraded is set when the decision was made without the shared store.
	Degraded bool

	Key    string
	Ticket string
}

// NewResult derives the client-facing counters from the window state.
// The entry for this request is already part of count, so exactly max
// requests fit in a window and the max+1th is rejected. resetFrom is the
// entry whose expiry leaves room for one more request; rejected attempts
// stay in the window, so it is not necessarily the oldest.
func NewResult(limit Limit, count int64, resetFrom, now time.Time) *Result {
	remaining := limit.Max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	if resetFrom.IsZero() {
		resetFrom = now
	}
	resetAt := resetFrom.Add(limit.Window)
	res := &Result{
		Allowed:   count <= int64(limit.Max),
		Limit:     limit.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !res.Allowed {
		res.RetryAfter = resetAt.Sub(now)
		if res.RetryAfter < time.Second {
			res.RetryAfter = time.Second
		}
	}
	return res
}

// DegradedResult is returned when the store is unavailable: admitted unless
// the scope fails closed.
func DegradedResult(limit Limit, now time.Time) *Result {
	res := &Result{
		Allowed:   !limit.FailClosed,
		Limit:     limit.Max,
		Remaining: limit.Max,
		ResetAt:   now.Add(limit.Window),
		Degraded:  true,
	}
	if limit.FailClosed {
		res.Remaining = 0
		res.RetryAfter = time.Second
	}
	return res
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, minimum 1.
func (r *Result) RetryAfterSeconds() int {
	secs := int(math.Ceil(r.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
