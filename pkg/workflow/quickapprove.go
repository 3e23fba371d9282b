package workflow

import (
	"errors"
	"time"

	"tink_backend/internal/model"
)

// FallbackMonthlyRent is used when neither the applicant's budget nor the
// property carries a rent figure.
const FallbackMonthlyRent = 1000

// DepositMultiplier: security deposit defaults to two months of rent.
const DepositMultiplier = 2

var (
	ErrPropertyOccupied = errors.New("property is already fully occupied")
	ErrNoVacantRooms    = errors.New("no vacant rooms available in this property")
)

// QuickApprovePlan is the approval decision computed by one-click approve:
// auto-selected room (per-room rentals only) plus default lease terms.
type QuickApprovePlan struct {
	RoomID          *uint
	RoomName        string
	MonthlyRent     float64
	SecurityDeposit float64
	StartDate       time.Time
	EndDate         time.Time
}

// PlanQuickApprove selects a unit and computes default lease terms without
// touching persistence; callers submit the plan as an approval decision only
// when it succeeds.
//
// For per_property rentals the whole property is the unit and the plan fails
// when the property is fully occupied. For per_room rentals the vacant,
// non-maintenance room with the lowest ID is picked; room order coming from
// the database is deliberately not trusted as a tie-break.
func PlanQuickApprove(app model.Application, property model.Property, rooms []model.Room, today time.Time) (*QuickApprovePlan, error) {
	plan := &QuickApprovePlan{RoomName: "Entire Property"}

	if property.RentType == model.RentPerProperty {
		if property.VacantRooms == 0 && property.TotalRooms > 0 {
			return nil, ErrPropertyOccupied
		}
	} else {
		var pick *model.Room
		for i := range rooms {
			r := &rooms[i]
			if r.PropertyID != property.ID || !r.IsAssignable() {
				continue
			}
			if pick == nil || r.ID < pick.ID {
				pick = r
			}
		}
		if pick == nil {
			return nil, ErrNoVacantRooms
		}
		plan.RoomID = &pick.ID
		plan.RoomName = pick.Name
	}

	plan.MonthlyRent = DefaultMonthlyRent(app.RentBudget, property.MonthlyRent)
	plan.SecurityDeposit = plan.MonthlyRent * DepositMultiplier

	plan.StartDate = today
	if app.DesiredMoveInDate != nil && !app.DesiredMoveInDate.IsZero() {
		plan.StartDate = *app.DesiredMoveInDate
	}
	plan.EndDate = AddLeaseYear(plan.StartDate)

	return plan, nil
}

// DefaultMonthlyRent picks the applicant's budget, then the property rent,
// then the flat fallback.
func DefaultMonthlyRent(budget, propertyRent float64) float64 {
	if budget > 0 {
		return budget
	}
	if propertyRent > 0 {
		return propertyRent
	}
	return FallbackMonthlyRent
}

// AddLeaseYear returns the date one calendar year later ("add 1 to year"
// semantics, not +365 days). A Feb 29 start clamps to Feb 28 instead of
// normalizing into March.
func AddLeaseYear(start time.Time) time.Time {
	end := start.AddDate(1, 0, 0)
	if end.Day() != start.Day() {
		end = end.AddDate(0, 0, -1)
	}
	return end
}
