package billing

import (
	"context"
	"database/sql"
	"time"
)

// PostgresStore persists payments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed payment store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const paymentColumns = `id, tenant_id, gateway_payment_id, status, amount_cents, due_date, paid_at, created_at`

func (p *PostgresStore) Create(ctx context.Context, pay *Payment) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		pay.ID, pay.TenantID, nullString(pay.GatewayPaymentID), string(pay.Status),
		pay.AmountCents, pay.DueDate, pay.PaidAt, pay.CreatedAt,
	)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Payment, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	pay, err := scanPayment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrPaymentNotFound
	}
	return pay, err
}

func (p *PostgresStore) HasSettled(ctx context.Context, tenantID string) (bool, error) {
	var settled bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE tenant_id = $1 AND status IN ('confirmed', 'received')
		)`, tenantID).Scan(&settled)
	return settled, err
}

func (p *PostgresStore) HasPendingFor(ctx context.Context, tenantID string, dueDate time.Time) (bool, error) {
	var pending bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE tenant_id = $1 AND status = 'pending' AND due_date = $2
		)`, tenantID, dueDate).Scan(&pending)
	return pending, err
}

func (p *PostgresStore) ListByTenant(ctx context.Context, tenantID string) ([]*Payment, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE tenant_id = $1 ORDER BY created_at`, tenantID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*Payment
	for rows.Next() {
		pay, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, pay)
	}
	return out, rows.Err()
}

func scanPayment(scan func(...any) error) (*Payment, error) {
	pay := &Payment{}
	var (
		gatewayID sql.NullString
		status    string
		paidAt    sql.NullTime
	)
	err := scan(&pay.ID, &pay.TenantID, &gatewayID, &status,
		&pay.AmountCents, &pay.DueDate, &paidAt, &pay.CreatedAt)
	if err != nil {
		return nil, err
	}
	pay.Status = PaymentStatus(status)
	if gatewayID.Valid {
		pay.GatewayPaymentID = gatewayID.String
	}
	if paidAt.Valid {
		pay.PaidAt = &paidAt.Time
	}
	return pay, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Store = (*PostgresStore)(nil)
