package notify

import (
	"context"
	"database/sql"
	"time"
)

// PostgresStore persists the notification ledger in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed ledger.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Record(ctx context.Context, r *Record) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO notifications (id, tenant_id, kind, days_before, sent_at)
		VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.TenantID, string(r.Kind), r.DaysBefore, r.SentAt,
	)
	return err
}

func (p *PostgresStore) SentSince(ctx context.Context, tenantID string, kind Kind, daysBefore int, cutoff time.Time) (bool, error) {
	var sent bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE tenant_id = $1 AND kind = $2 AND days_before = $3 AND sent_at >= $4
		)`, tenantID, string(kind), daysBefore, cutoff).Scan(&sent)
	return sent, err
}

var _ Store = (*PostgresStore)(nil)
