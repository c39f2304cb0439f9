package shared

import (
	"context"
	"time"
)

// IdempotencyStore stores processed source references to short-circuit duplicate
// commits before a transaction is opened. It is a fast-path guard only; the
// authoritative duplicate check happens against the movement ledger inside the
// same transaction that writes it.
type IdempotencyStore interface {
	// MarkProcessed marks a source reference as processed with a TTL.
	// Returns true if the reference was newly marked, false if already present.
	MarkProcessed(ctx context.Context, sourceRef string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a source reference has already been processed
	IsProcessed(ctx context.Context, sourceRef string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is the time-to-live for processed source references
	TTL time.Duration

	// Enabled determines whether the fast-path check is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
