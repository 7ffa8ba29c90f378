// Package tenant provides the tenant aggregate and its lifecycle fields.
//
// The lifecycle engine is the only writer of Status, BlockedAt, WillBeDeletedAt,
// PlanID, PlanChangeScheduledID and NextDueDate while a pass is running; the
// admin CRUD layer owns everything else.
package tenant

import (
	"errors"
	"time"

	"github.com/zapdesk/zapdesk/internal/plan"
)

// Errors
var (
	ErrTenantNotFound = errors.New("tenant: not found")
	ErrSlugTaken      = errors.New("tenant: slug already taken")
)

// Status represents a tenant's lifecycle state. There is no "deleted" status:
// deletion removes the row.
type Status string

const (
	StatusTrial   Status = "trial"
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// Tenant represents a customer organisation using the platform.
type Tenant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Email  string `json:"email"`
	Status Status `json:"status"`

	PlanID                string  `json:"planId"`
	PlanChangeScheduledID *string `json:"planChangeScheduledId,omitempty"`

	// Cached limit fields, refreshed from the plan on every plan change.
	Limits plan.Limits `json:"limits"`

	TrialEndsAt     time.Time  `json:"trialEndsAt"`
	NextDueDate     time.Time  `json:"nextDueDate"`
	BlockedAt       *time.Time `json:"blockedAt,omitempty"`
	WillBeDeletedAt *time.Time `json:"willBeDeletedAt,omitempty"`

	AsaasCustomerID string `json:"asaasCustomerId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Usage holds the tenant's current resource consumption, derived by query.
type Usage struct {
	ActiveUsers        int
	ConnectedWhatsApps int
	CampaignsThisMonth int
}

// Instance is a WhatsApp endpoint owned by a tenant, needing provider-side
// teardown before the tenant's data is purged.
type Instance struct {
	ID       string
	Token    string
	ProxyURL string
}
