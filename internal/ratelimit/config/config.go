package config

import (
	"fmt"
	"time"

	"inkwell/internal/ratelimit/models"
)

// Table maps each scope to its budget.
type Table map[models.Scope]models.Limit

// Config holds rate limiting configuration.
type Config struct {
	Scopes Table

	// AutoBlock blocks a source address once it collects Threshold
	// violations within Lookback.
	AutoBlock AutoBlockConfig

	// GlobalPerSecond caps requests per process before any shared-store work.
	// Zero disables the throttle.
	GlobalPerSecond int
	GlobalBurst     int
}

// AutoBlockConfig defines automatic blocking of repeat offenders.
type AutoBlockConfig struct {
	Threshold int
	Lookback  time.Duration
	Duration  time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Scopes: Table{
			models.ScopeAuth:         {Window: 15 * time.Minute, Max: 5},
			models.ScopeAIGeneration: {Window: time.Minute, Max: 10},
			models.ScopeBookCreation: {Window: time.Hour, Max: 30},
			models.ScopeGeneralAPI:   {Window: 15 * time.Minute, Max: 100},
		},
		AutoBlock: AutoBlockConfig{
			Threshold: 10,
			Lookback:  time.Hour,
			Duration:  time.Hour,
		},
		GlobalPerSecond: 1000,
		GlobalBurst:     200,
	}
}

// Lookup returns the budget for scope.
func (t Table) Lookup(scope models.Scope) (models.Limit, bool) {
	l, ok := t[scope]
	return l, ok
}

// Validate checks every scope has a usable budget.
func (c *Config) Validate() error {
	for _, scope := range models.Scopes {
		l, ok := c.Scopes[scope]
		if !ok {
			return fmt.Errorf("rate limit scope %s is not configured", scope)
		}
		if err := l.Validate(); err != nil {
			return fmt.Errorf("rate limit scope %s: %w", scope, err)
		}
	}
	if c.AutoBlock.Threshold < 0 {
		return fmt.Errorf("auto-block threshold must not be negative")
	}
	if c.AutoBlock.Threshold > 0 && (c.AutoBlock.Lookback <= 0 || c.AutoBlock.Duration <= 0) {
		return fmt.Errorf("auto-block lookback and duration must be positive")
	}
	return nil
}
