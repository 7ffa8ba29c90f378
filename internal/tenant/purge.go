package tenant

import (
	"context"
	"fmt"
)

// PurgeStep is one dependent-table deletion in the cascade that removes a
// tenant. Steps run in declaration order, which is FK-safe: children before
// parents, the tenants row last.
//
// Optional steps cover tables that schema evolution may have added or removed;
// a missing optional table is skipped, a missing required table is an error.
type PurgeStep struct {
	Table    string
	Query    string // delete statement with $1 = tenant id
	Required bool
}

// purgeSteps is the declared cascade. Restriction-list entries hang off
// whatsapp_instances rather than the tenant, hence the subquery.
var purgeSteps = []PurgeStep{
	{Table: "blacklist_entries", Required: false, Query: `
		DELETE FROM blacklist_entries
		WHERE instance_id IN (SELECT id FROM whatsapp_instances WHERE tenant_id = $1)`},
	{Table: "campaign_contacts", Required: false, Query: `
		DELETE FROM campaign_contacts
		WHERE campaign_id IN (SELECT id FROM campaigns WHERE tenant_id = $1)`},
	{Table: "scheduled_messages", Required: false, Query: `DELETE FROM scheduled_messages WHERE tenant_id = $1`},
	{Table: "campaigns", Required: true, Query: `DELETE FROM campaigns WHERE tenant_id = $1`},
	{Table: "message_templates", Required: false, Query: `DELETE FROM message_templates WHERE tenant_id = $1`},
	{Table: "quick_replies", Required: false, Query: `DELETE FROM quick_replies WHERE tenant_id = $1`},
	{Table: "contacts", Required: true, Query: `DELETE FROM contacts WHERE tenant_id = $1`},
	{Table: "contact_lists", Required: false, Query: `DELETE FROM contact_lists WHERE tenant_id = $1`},
	{Table: "whatsapp_instances", Required: true, Query: `DELETE FROM whatsapp_instances WHERE tenant_id = $1`},
	{Table: "usage_counters", Required: false, Query: `DELETE FROM usage_counters WHERE tenant_id = $1`},
	{Table: "audit_logs", Required: false, Query: `DELETE FROM audit_logs WHERE tenant_id = $1`},
	{Table: "webhooks", Required: false, Query: `DELETE FROM webhooks WHERE tenant_id = $1`},
	{Table: "notifications", Required: true, Query: `DELETE FROM notifications WHERE tenant_id = $1`},
	{Table: "payments", Required: true, Query: `DELETE FROM payments WHERE tenant_id = $1`},
	{Table: "users", Required: true, Query: `DELETE FROM users WHERE tenant_id = $1`},
	{Table: "tenants", Required: true, Query: `DELETE FROM tenants WHERE id = $1`},
}

// Purge removes the tenant and every dependent row in one transaction.
// The caller is responsible for the payment safety gate (see ListPurgeable);
// Purge itself only guarantees the cascade is all-or-nothing.
func (p *PostgresStore) Purge(ctx context.Context, id string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("purge %s: begin: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, step := range purgeSteps {
		if !step.Required {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT to_regclass($1) IS NOT NULL`, "public."+step.Table).Scan(&exists); err != nil {
				return fmt.Errorf("purge %s: probe %s: %w", id, step.Table, err)
			}
			if !exists {
				continue
			}
		}
		if _, err := tx.ExecContext(ctx, step.Query, id); err != nil {
			return fmt.Errorf("purge %s: delete from %s: %w", id, step.Table, err)
		}
	}

	return tx.Commit()
}
