// Package validation holds input size limits enforced at the trust boundary.
package validation

import (
	"fmt"
	"time"

	dErrors "inkwell/pkg/domain-errors"
)

// MaxBodySize is the largest request body accepted by the API (64 KB).
const MaxBodySize = 64 * 1024

const (
	MaxEmailLength        = 255
	MaxPasswordLength     = 72 // bcrypt ignores bytes beyond 72
	MaxRefreshTokenLength = 2048
	MaxIdentifierLength   = 128
	MaxReasonLength       = 500
	MaxResourceLength     = 64
)

const (
	// DefaultQueryLimit is used when an audit query omits limit.
	DefaultQueryLimit = 100
	// MaxQueryLimit caps audit query page size.
	MaxQueryLimit = 1000
	// MaxBlockDuration caps manual blocks placed through the admin surface.
	MaxBlockDuration = 30 * 24 * time.Hour
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckDuration validates that d is positive and at most max.
func CheckDuration(fieldName string, d, max time.Duration) error {
	if d <= 0 {
		return dErrors.New(dErrors.CodeValidation, fieldName+" must be positive")
	}
	if d > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max of %s", fieldName, max))
	}
	return nil
}

// ClampQueryLimit maps a requested page size onto [1, MaxQueryLimit].
// Non-positive values select DefaultQueryLimit.
func ClampQueryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultQueryLimit
	case limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return limit
	}
}
