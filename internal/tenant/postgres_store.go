package tenant

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/zapdesk/zapdesk/internal/plan"
)

// PostgresStore persists tenants in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed tenant store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const tenantColumns = `id, name, slug, email, status, plan_id, plan_change_scheduled_id,
	max_users, max_whatsapps, max_campaigns_month,
	trial_ends_at, next_due_date, blocked_at, will_be_deleted_at,
	asaas_customer_id, created_at, updated_at`

func (p *PostgresStore) Create(ctx context.Context, t *Tenant) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		t.ID, t.Name, t.Slug, t.Email, string(t.Status), t.PlanID, t.PlanChangeScheduledID,
		t.Limits.MaxUsers, t.Limits.MaxWhatsApps, t.Limits.MaxCampaignsMonth,
		t.TrialEndsAt, t.NextDueDate, t.BlockedAt, t.WillBeDeletedAt,
		nullIfEmpty(t.AsaasCustomerID), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrSlugTaken
		}
		return err
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id string) (*Tenant, error) {
	return scanTenant(p.db.QueryRowContext(ctx, `
		SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
}

func (p *PostgresStore) Update(ctx context.Context, t *Tenant) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE tenants SET name = $1, email = $2, status = $3, plan_id = $4,
			plan_change_scheduled_id = $5, max_users = $6, max_whatsapps = $7,
			max_campaigns_month = $8, next_due_date = $9, blocked_at = $10,
			will_be_deleted_at = $11, asaas_customer_id = $12, updated_at = $13
		WHERE id = $14`,
		t.Name, t.Email, string(t.Status), t.PlanID,
		t.PlanChangeScheduledID, t.Limits.MaxUsers, t.Limits.MaxWhatsApps,
		t.Limits.MaxCampaignsMonth, t.NextDueDate, t.BlockedAt,
		t.WillBeDeletedAt, nullIfEmpty(t.AsaasCustomerID), t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (p *PostgresStore) ListTrialExpired(ctx context.Context, now time.Time) ([]*Tenant, error) {
	return p.list(ctx, `
		SELECT `+tenantColumns+` FROM tenants
		WHERE status = 'trial' AND trial_ends_at <= $1 AND blocked_at IS NULL
		ORDER BY trial_ends_at`, now)
}

func (p *PostgresStore) ListDueWithin(ctx context.Context, now time.Time, window time.Duration) ([]*Tenant, error) {
	return p.list(ctx, `
		SELECT `+tenantColumns+` FROM tenants
		WHERE status = 'active' AND next_due_date > $1 AND next_due_date <= $2
		ORDER BY next_due_date`, now, now.Add(window))
}

func (p *PostgresStore) ListOverdue(ctx context.Context, now time.Time) ([]*Tenant, error) {
	return p.list(ctx, `
		SELECT `+tenantColumns+` FROM tenants
		WHERE status = 'active' AND next_due_date < $1
		ORDER BY next_due_date`, now)
}

func (p *PostgresStore) ListPendingDowngrades(ctx context.Context, now time.Time) ([]*Tenant, error) {
	return p.list(ctx, `
		SELECT `+tenantColumns+` FROM tenants
		WHERE plan_change_scheduled_id IS NOT NULL AND next_due_date <= $1
		ORDER BY next_due_date`, now)
}

func (p *PostgresStore) ListDeletionPending(ctx context.Context, now time.Time, horizon time.Duration) ([]*Tenant, error) {
	return p.list(ctx, `
		SELECT `+tenantColumns+` FROM tenants
		WHERE status = 'blocked' AND will_be_deleted_at >= $1 AND will_be_deleted_at <= $2
		ORDER BY will_be_deleted_at`, now, now.Add(horizon))
}

// ListPurgeable filters out tenants with a settled payment in the query itself.
// That filter is the safety gate on permanent deletion, not an optimisation.
func (p *PostgresStore) ListPurgeable(ctx context.Context, now time.Time) ([]*Tenant, error) {
	return p.list(ctx, `
		SELECT `+tenantColumns+` FROM tenants t
		WHERE t.status = 'blocked' AND t.will_be_deleted_at <= $1
		  AND NOT EXISTS (
			SELECT 1 FROM payments pay
			WHERE pay.tenant_id = t.id AND pay.status IN ('confirmed', 'received')
		  )
		ORDER BY t.will_be_deleted_at`, now)
}

func (p *PostgresStore) Block(ctx context.Context, id string, blockedAt, deleteAt time.Time) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE tenants
		SET status = 'blocked', blocked_at = $1, will_be_deleted_at = $2, updated_at = $1
		WHERE id = $3`, blockedAt, deleteAt, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (p *PostgresStore) ApplyDowngrade(ctx context.Context, id, planID string, nextDue time.Time, limits plan.Limits) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE tenants
		SET plan_id = $1, plan_change_scheduled_id = NULL, next_due_date = $2,
			max_users = $3, max_whatsapps = $4, max_campaigns_month = $5, updated_at = NOW()
		WHERE id = $6`,
		planID, nextDue, limits.MaxUsers, limits.MaxWhatsApps, limits.MaxCampaignsMonth, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (p *PostgresStore) ClearScheduledDowngrade(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE tenants SET plan_change_scheduled_id = NULL, updated_at = NOW()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Usage derives current resource consumption from the dependent tables.
// Campaign counts are scoped to the current calendar month, matching the
// per-month plan limit.
func (p *PostgresStore) Usage(ctx context.Context, id string) (Usage, error) {
	var u Usage
	err := p.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE tenant_id = $1 AND active = TRUE),
			(SELECT COUNT(*) FROM whatsapp_instances WHERE tenant_id = $1 AND status = 'connected'),
			(SELECT COUNT(*) FROM campaigns
			 WHERE tenant_id = $1 AND created_at >= date_trunc('month', NOW()))`,
		id).Scan(&u.ActiveUsers, &u.ConnectedWhatsApps, &u.CampaignsThisMonth)
	return u, err
}

func (p *PostgresStore) ListInstances(ctx context.Context, id string) ([]Instance, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, provider_token, COALESCE(proxy_url, '')
		FROM whatsapp_instances WHERE tenant_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Instance
	for rows.Next() {
		var inst Instance
		if err := rows.Scan(&inst.ID, &inst.Token, &inst.ProxyURL); err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (p *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*Tenant, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tenants []*Tenant
	for rows.Next() {
		t, err := scanTenantRow(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func scanTenant(row *sql.Row) (*Tenant, error) {
	t, err := scanFrom(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrTenantNotFound
	}
	return t, err
}

func scanTenantRow(rows *sql.Rows) (*Tenant, error) {
	return scanFrom(rows.Scan)
}

func scanFrom(scan func(...any) error) (*Tenant, error) {
	t := &Tenant{}
	var (
		status    string
		scheduled sql.NullString
		asaasID   sql.NullString
		blockedAt sql.NullTime
		deleteAt  sql.NullTime
	)
	err := scan(&t.ID, &t.Name, &t.Slug, &t.Email, &status, &t.PlanID, &scheduled,
		&t.Limits.MaxUsers, &t.Limits.MaxWhatsApps, &t.Limits.MaxCampaignsMonth,
		&t.TrialEndsAt, &t.NextDueDate, &blockedAt, &deleteAt,
		&asaasID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = Status(status)
	if scheduled.Valid {
		t.PlanChangeScheduledID = &scheduled.String
	}
	if asaasID.Valid {
		t.AsaasCustomerID = asaasID.String
	}
	if blockedAt.Valid {
		t.BlockedAt = &blockedAt.Time
	}
	if deleteAt.Valid {
		t.WillBeDeletedAt = &deleteAt.Time
	}
	return t, nil
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Store = (*PostgresStore)(nil)
