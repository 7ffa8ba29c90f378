package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/zapdesk/zapdesk/internal/idgen"
	"github.com/zapdesk/zapdesk/internal/metrics"
)

// Service sends notifications through the mailer, gated by the dedup ledger.
type Service struct {
	store  Store
	mailer Mailer
	window time.Duration
}

// NewService creates a notification service. window is the dedup window: a
// second identical notification inside it is skipped.
func NewService(store Store, mailer Mailer, window time.Duration) *Service {
	return &Service{store: store, mailer: mailer, window: window}
}

// Send delivers one notification unless an identical one went out within the
// dedup window. It returns true if a mail was actually sent. The ledger entry
// is written only after a successful send, so a failed send is naturally
// retried on the next pass.
func (s *Service) Send(ctx context.Context, tenantID, email string, kind Kind, daysBefore int, vars map[string]string) (bool, error) {
	cutoff := time.Now().Add(-s.window)
	sent, err := s.store.SentSince(ctx, tenantID, kind, daysBefore, cutoff)
	if err != nil {
		return false, fmt.Errorf("notify: dedup lookup for %s/%s: %w", tenantID, kind, err)
	}
	if sent {
		metrics.NotificationsTotal.WithLabelValues(string(kind), "deduped").Inc()
		return false, nil
	}

	if err := s.mailer.Send(ctx, email, kind, vars); err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(kind), "failed").Inc()
		return false, err
	}

	rec := &Record{
		ID:         idgen.WithPrefix("ntf_"),
		TenantID:   tenantID,
		Kind:       kind,
		DaysBefore: daysBefore,
		SentAt:     time.Now(),
	}
	if err := s.store.Record(ctx, rec); err != nil {
		// The mail went out; surface the ledger failure so the caller logs it.
		return true, fmt.Errorf("notify: record %s/%s: %w", tenantID, kind, err)
	}
	metrics.NotificationsTotal.WithLabelValues(string(kind), "sent").Inc()
	return true, nil
}
