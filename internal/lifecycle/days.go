package lifecycle

import (
	"math"
	"time"
)

// DaysUntil returns the number of whole-or-partial 24-hour buckets between now
// and deadline, rounding up. A deadline 2 hours away is 1 day out; one 25
// hours away is 2 days out. Deadlines at or before now return 0 or less.
//
// Both passes use this same rule so the discrete warning schedules behave
// identically regardless of the hour the pass runs.
func DaysUntil(now, deadline time.Time) int {
	return int(math.Ceil(deadline.Sub(now).Hours() / 24))
}
