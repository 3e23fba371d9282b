package workflow

import (
	"math"
	"time"
)

// MoveOutImpact is the financial consequence of ending a lease early.
// The math intentionally uses a flat 30-day month, matching how rent is
// prorated everywhere else in the product.
type MoveOutImpact struct {
	TotalDaysRemaining int     `json:"total_days_remaining"`
	MonthsRemaining    int     `json:"months_remaining"`
	ExtraDays          int     `json:"extra_days"`
	DailyRent          float64 `json:"daily_rent"`
	RentForgo          float64 `json:"rent_forgo"`
}

// CalculateMoveOutImpact computes the prorated rent the landlord forgoes by
// allowing a move-out before the lease end date. A move-out on or after the
// end date clamps to zero.
func CalculateMoveOutImpact(monthlyRent float64, leaseEnd, moveOut time.Time) MoveOutImpact {
	diff := leaseEnd.Sub(moveOut)
	days := int(math.Ceil(diff.Hours() / 24))
	if days < 0 {
		days = 0
	}

	daily := monthlyRent / 30
	forgo := math.Round(daily*float64(days)*100) / 100

	return MoveOutImpact{
		TotalDaysRemaining: days,
		MonthsRemaining:    days / 30,
		ExtraDays:          days % 30,
		DailyRent:          daily,
		RentForgo:          forgo,
	}
}
