// Package sharedstore is the key/value store shared by every gateway instance:
// rate windows, the blocklist and consumed refresh tokens live here.
// Redis backs multi-instance deployments; the memory store serves single-node
// deployments and tests.
package sharedstore

import (
	"context"
	"errors"
	"time"

	dErrors "inkwell/pkg/domain-errors"
)

// ErrUnavailable matches (via errors.Is) any failure to reach the store.
var ErrUnavailable = &dErrors.Error{Code: dErrors.CodeStoreUnavailable}

// WindowState is the result of one atomic sliding-window step.
type WindowState struct {
	// Count includes the entry added by this call.
	Count int64
	// Oldest is the timestamp of the oldest entry still inside the window.
	Oldest time.Time
	// ResetFrom is the timestamp of the entry whose expiry brings the window
	// back under capacity: the oldest entry while Count <= capacity, else the
	// entry at index Count-capacity.
	ResetFrom time.Time
	// Now is the store's clock at the time of the step.
	Now time.Time
}

// Store is the narrow contract the admission layer needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetIfAbsent writes value only when key does not exist and reports whether it did.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error

	// SlideWindow atomically drops entries at or before now-window, adds
	// member at now, counts, and re-arms key expiry to window. capacity
	// selects WindowState.ResetFrom; zero means the oldest entry.
	SlideWindow(ctx context.Context, key string, window time.Duration, member string, capacity int) (*WindowState, error)
	// RemoveMember deletes one entry from a window. Missing entries are ignored.
	RemoveMember(ctx context.Context, key, member string) error

	Ping(ctx context.Context) error
}

func unavailable(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, msg)
}
