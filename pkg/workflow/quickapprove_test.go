package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tink_backend/internal/model"
)

func room(id uint, propertyID uint, name string, vacant bool, status model.RoomStatus) model.Room {
	r := model.Room{
		PropertyID: propertyID,
		Name:       name,
		IsVacant:   vacant,
		Status:     status,
	}
	r.ID = id
	return r
}

func TestPlanQuickApprovePerProperty(t *testing.T) {
	property := model.Property{RentType: model.RentPerProperty, MonthlyRent: 1200}
	property.ID = 1

	t.Run("vacant property plans entire unit", func(t *testing.T) {
		property := property
		property.TotalRooms = 3
		property.VacantRooms = 3

		plan, err := PlanQuickApprove(model.Application{}, property, nil, date(2025, 1, 10))
		require.NoError(t, err)

		assert.Nil(t, plan.RoomID)
		assert.Equal(t, "Entire Property", plan.RoomName)
		assert.Equal(t, 1200.0, plan.MonthlyRent)
		assert.Equal(t, 2400.0, plan.SecurityDeposit)
	})

	t.Run("fully occupied property is rejected", func(t *testing.T) {
		property := property
		property.TotalRooms = 3
		property.VacantRooms = 0

		plan, err := PlanQuickApprove(model.Application{}, property, nil, date(2025, 1, 10))
		require.ErrorIs(t, err, ErrPropertyOccupied)
		assert.Nil(t, plan)
	})

	t.Run("property without rooms is still approvable", func(t *testing.T) {
		// single-unit properties often have no room records at all
		property := property
		property.TotalRooms = 0
		property.VacantRooms = 0

		_, err := PlanQuickApprove(model.Application{}, property, nil, date(2025, 1, 10))
		require.NoError(t, err)
	})
}

func TestPlanQuickApprovePerRoom(t *testing.T) {
	property := model.Property{RentType: model.RentPerRoom, MonthlyRent: 800}
	property.ID = 7

	t.Run("picks lowest vacant room id", func(t *testing.T) {
		rooms := []model.Room{
			room(5, 7, "Room C", true, model.RoomStatusAvailable),
			room(3, 7, "Room A", true, model.RoomStatusAvailable),
			room(2, 7, "Room X", false, model.RoomStatusOccupied),
		}

		plan, err := PlanQuickApprove(model.Application{}, property, rooms, date(2025, 1, 10))
		require.NoError(t, err)
		require.NotNil(t, plan.RoomID)
		assert.Equal(t, uint(3), *plan.RoomID)
		assert.Equal(t, "Room A", plan.RoomName)
	})

	t.Run("maintenance rooms are never picked", func(t *testing.T) {
		rooms := []model.Room{
			room(1, 7, "Room A", true, model.RoomStatusMaintenance),
			room(2, 7, "Room B", true, model.RoomStatusAvailable),
		}

		plan, err := PlanQuickApprove(model.Application{}, property, rooms, date(2025, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, uint(2), *plan.RoomID)
	})

	t.Run("rooms of other properties are ignored", func(t *testing.T) {
		rooms := []model.Room{
			room(1, 99, "Other house", true, model.RoomStatusAvailable),
		}

		_, err := PlanQuickApprove(model.Application{}, property, rooms, date(2025, 1, 10))
		require.ErrorIs(t, err, ErrNoVacantRooms)
	})

	t.Run("no vacant rooms is rejected", func(t *testing.T) {
		rooms := []model.Room{
			room(1, 7, "Room A", false, model.RoomStatusOccupied),
			room(2, 7, "Room B", true, model.RoomStatusMaintenance),
		}

		plan, err := PlanQuickApprove(model.Application{}, property, rooms, date(2025, 1, 10))
		require.ErrorIs(t, err, ErrNoVacantRooms)
		assert.Nil(t, plan)
	})
}

func TestPlanQuickApproveTerms(t *testing.T) {
	property := model.Property{RentType: model.RentPerProperty, MonthlyRent: 1200}

	t.Run("applicant budget wins over property rent", func(t *testing.T) {
		app := model.Application{RentBudget: 950}

		plan, err := PlanQuickApprove(app, property, nil, date(2025, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, 950.0, plan.MonthlyRent)
		assert.Equal(t, 1900.0, plan.SecurityDeposit)
	})

	t.Run("fallback rent when nothing is set", func(t *testing.T) {
		plan, err := PlanQuickApprove(model.Application{}, model.Property{RentType: model.RentPerProperty}, nil, date(2025, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, float64(FallbackMonthlyRent), plan.MonthlyRent)
	})

	t.Run("desired move-in date becomes lease start", func(t *testing.T) {
		moveIn := date(2025, 3, 1)
		app := model.Application{DesiredMoveInDate: &moveIn}

		plan, err := PlanQuickApprove(app, property, nil, date(2025, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, moveIn, plan.StartDate)
		assert.Equal(t, date(2026, 3, 1), plan.EndDate)
	})

	t.Run("lease runs one calendar year", func(t *testing.T) {
		plan, err := PlanQuickApprove(model.Application{}, property, nil, date(2025, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, date(2026, 1, 10), plan.EndDate)
	})
}

func TestAddLeaseYear(t *testing.T) {
	assert.Equal(t, date(2026, 1, 10), AddLeaseYear(date(2025, 1, 10)))
	// leap day clamps instead of rolling into March
	assert.Equal(t, date(2025, 2, 28), AddLeaseYear(date(2024, 2, 29)))
	assert.Equal(t, date(2025, 3, 1), AddLeaseYear(date(2024, 3, 1)))
}

func TestDefaultMonthlyRent(t *testing.T) {
	assert.Equal(t, 950.0, DefaultMonthlyRent(950, 1200))
	assert.Equal(t, 1200.0, DefaultMonthlyRent(0, 1200))
	assert.Equal(t, float64(FallbackMonthlyRent), DefaultMonthlyRent(0, 0))
}
