package reputation

import "time"

// Source records why an identifier was blocked.
type Source string

const (
	SourceManual         Source = "manual"
	SourceAutoBlock      Source = "auto_block"
	SourceMaliciousInput Source = "malicious_input"
)

// BlockEntry is stored as JSON under block:<identifier> with a TTL equal
// to the block duration.
type BlockEntry struct {
	Identifier string    `json:"identifier"`
	Reason     string    `json:"reason"`
	Source     Source    `json:"source"`
	Actor      string    `json:"actor,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Active reports whether the block is still in force at now.
func (b *BlockEntry) Active(now time.Time) bool {
	return now.Before(b.ExpiresAt)
}
