// Package notify provides time-gated tenant notifications with a dedup ledger.
//
// Records are append-only: a record exists only for notifications that were
// actually handed to the mailer, and nothing ever mutates one. Dedup lookups
// over the recent window are the only read path.
package notify

import (
	"time"
)

// Kind identifies a notification template.
type Kind string

const (
	// KindExpirationWarning warns an active tenant 1–3 days before renewal.
	KindExpirationWarning Kind = "expiration_warning"
	// KindDeletionWarning warns a blocked tenant 7/5/3/1 days before purge.
	KindDeletionWarning Kind = "deletion_warning"
	// KindBlocked informs a tenant it has been blocked.
	KindBlocked Kind = "blocked"
)

// Record is one entry in the dedup ledger. DaysBefore is 0 for kinds without
// a threshold (blocked).
type Record struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	Kind       Kind      `json:"kind"`
	DaysBefore int       `json:"daysBefore,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}
