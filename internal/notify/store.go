package notify

import (
	"context"
	"time"
)

// Store is the append-only notification ledger.
type Store interface {
	// Record appends a ledger entry.
	Record(ctx context.Context, r *Record) error

	// SentSince reports whether a matching notification was recorded at or
	// after the cutoff. This is the dedup check.
	SentSince(ctx context.Context, tenantID string, kind Kind, daysBefore int, cutoff time.Time) (bool, error)
}
