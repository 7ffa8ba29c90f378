package plan

import (
	"context"
	"database/sql"
)

// PostgresStore reads plans from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed plan store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const planColumns = `id, name, price_cents, max_users, max_whatsapps, max_campaigns_month, price_per_user_cents, active`

func (p *PostgresStore) Get(ctx context.Context, id string) (*Plan, error) {
	return scanPlan(p.db.QueryRowContext(ctx, `
		SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
}

func (p *PostgresStore) ListActive(ctx context.Context) ([]*Plan, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+planColumns+` FROM plans WHERE active = TRUE ORDER BY price_cents`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var plans []*Plan
	for rows.Next() {
		pl := &Plan{}
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.PriceCents, &pl.MaxUsers, &pl.MaxWhatsApps,
			&pl.MaxCampaignsMonth, &pl.PricePerUserCents, &pl.Active); err != nil {
			return nil, err
		}
		plans = append(plans, pl)
	}
	return plans, rows.Err()
}

func scanPlan(row *sql.Row) (*Plan, error) {
	pl := &Plan{}
	err := row.Scan(&pl.ID, &pl.Name, &pl.PriceCents, &pl.MaxUsers, &pl.MaxWhatsApps,
		&pl.MaxCampaignsMonth, &pl.PricePerUserCents, &pl.Active)
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return pl, nil
}

var _ Store = (*PostgresStore)(nil)
