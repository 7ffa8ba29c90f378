// Package plan provides the read-only plan catalogue with per-plan resource limits.
package plan

import (
	"errors"
)

// Errors
var (
	ErrPlanNotFound = errors.New("plan: not found")
)

// Plan defines a pricing tier and its resource limits. Limits are read-only
// from the engine's point of view; the admin CRUD layer owns writes.
type Plan struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	PriceCents        int64  `json:"priceCents"`
	MaxUsers          int    `json:"maxUsers"`
	MaxWhatsApps      int    `json:"maxWhatsapps"`
	MaxCampaignsMonth int    `json:"maxCampaignsMonth"`
	PricePerUserCents int64  `json:"pricePerUserCents,omitempty"`
	Active            bool   `json:"active"`
}

// Limits is the subset of a plan cached on each tenant row so that request-path
// checks never need a plan lookup. Refreshed whenever the tenant's plan changes.
type Limits struct {
	MaxUsers          int
	MaxWhatsApps      int
	MaxCampaignsMonth int
}

// Limits extracts the cacheable limit fields.
func (p *Plan) Limits() Limits {
	return Limits{
		MaxUsers:          p.MaxUsers,
		MaxWhatsApps:      p.MaxWhatsApps,
		MaxCampaignsMonth: p.MaxCampaignsMonth,
	}
}
