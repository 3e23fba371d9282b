package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateMoveOutImpact(t *testing.T) {
	t.Run("one month early", func(t *testing.T) {
		impact := CalculateMoveOutImpact(1500, date(2024, 12, 31), date(2024, 12, 1))

		assert.Equal(t, 30, impact.TotalDaysRemaining)
		assert.Equal(t, 1, impact.MonthsRemaining)
		assert.Equal(t, 0, impact.ExtraDays)
		assert.InDelta(t, 50.0, impact.DailyRent, 0.001)
		assert.Equal(t, 1500.00, impact.RentForgo)
	})

	t.Run("months and extra days", func(t *testing.T) {
		impact := CalculateMoveOutImpact(900, date(2025, 6, 30), date(2025, 5, 16))

		assert.Equal(t, 45, impact.TotalDaysRemaining)
		assert.Equal(t, 1, impact.MonthsRemaining)
		assert.Equal(t, 15, impact.ExtraDays)
		assert.Equal(t, 1350.00, impact.RentForgo)
	})

	t.Run("move out after lease end clamps to zero", func(t *testing.T) {
		impact := CalculateMoveOutImpact(1500, date(2024, 12, 31), date(2025, 1, 15))

		assert.Equal(t, 0, impact.TotalDaysRemaining)
		assert.Equal(t, 0, impact.MonthsRemaining)
		assert.Equal(t, 0, impact.ExtraDays)
		assert.Equal(t, 0.00, impact.RentForgo)
	})

	t.Run("move out on lease end day owes nothing", func(t *testing.T) {
		impact := CalculateMoveOutImpact(1500, date(2024, 12, 31), date(2024, 12, 31))

		assert.Equal(t, 0, impact.TotalDaysRemaining)
		assert.Equal(t, 0.00, impact.RentForgo)
	})

	t.Run("forgone rent rounds to cents", func(t *testing.T) {
		// 1000/30 = 33.333... per day
		impact := CalculateMoveOutImpact(1000, date(2025, 3, 11), date(2025, 3, 10))

		assert.Equal(t, 1, impact.TotalDaysRemaining)
		assert.Equal(t, 33.33, impact.RentForgo)
	})
}
