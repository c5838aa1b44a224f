package models

import (
	"fmt"
	"strings"
)

// KeyPrefix namespaces shared-store keys by purpose.
type KeyPrefix string

const (
	KeyPrefixWindow     KeyPrefix = "rl"
	KeyPrefixViolations KeyPrefix = "violations"
	KeyPrefixBlock      KeyPrefix = "block"
)

// WindowKey builds the sliding-window key for (scope, identifier).
func WindowKey(scope Scope, identifier string) string {
	return fmt.Sprintf("%s:%s:%s", KeyPrefixWindow, scope, SanitizeKeySegment(identifier))
}

// ViolationKey builds the key that counts limit violations for identifier.
func ViolationKey(identifier string) string {
	return fmt.Sprintf("%s:%s", KeyPrefixViolations, SanitizeKeySegment(identifier))
}

// BlockKey builds the blocklist key for identifier.
func BlockKey(identifier string) string {
	return fmt.Sprintf("%s:%s", KeyPrefixBlock, SanitizeKeySegment(identifier))
}

// SanitizeKeySegment escapes ':' so caller-controlled identifiers (IPv6
// addresses, subject IDs) cannot reach into a neighbouring key. The escape
// character is escaped first, making the mapping injective:
//
//	"a:b"  -> "a_cb"
//	"a_b"  -> "a__b"
//	"a_:b" -> "a___cb"
func SanitizeKeySegment(s string) string {
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.ReplaceAll(s, ":", "_c")
	return s
}
