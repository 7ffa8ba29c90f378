package lifecycle

import (
	"fmt"

	"github.com/zapdesk/zapdesk/internal/plan"
	"github.com/zapdesk/zapdesk/internal/tenant"
)

// LimitViolation reports one resource whose current usage exceeds a plan limit.
type LimitViolation struct {
	Resource string
	Usage    int
	Limit    int
}

func (v LimitViolation) String() string {
	return fmt.Sprintf("%s: %d in use, limit %d", v.Resource, v.Usage, v.Limit)
}

// CheckPlanFit compares current usage against a target plan's limits. Usage
// equal to a limit fits; one unit over does not. A zero limit means unlimited.
func CheckPlanFit(u tenant.Usage, p *plan.Plan) []LimitViolation {
	var violations []LimitViolation
	if p.MaxUsers > 0 && u.ActiveUsers > p.MaxUsers {
		violations = append(violations, LimitViolation{"users", u.ActiveUsers, p.MaxUsers})
	}
	if p.MaxWhatsApps > 0 && u.ConnectedWhatsApps > p.MaxWhatsApps {
		violations = append(violations, LimitViolation{"whatsapp_instances", u.ConnectedWhatsApps, p.MaxWhatsApps})
	}
	if p.MaxCampaignsMonth > 0 && u.CampaignsThisMonth > p.MaxCampaignsMonth {
		violations = append(violations, LimitViolation{"campaigns_month", u.CampaignsThisMonth, p.MaxCampaignsMonth})
	}
	return violations
}
