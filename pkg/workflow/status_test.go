package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tink_backend/internal/model"
)

func lease(id uint, appID *uint, tenantID, propertyID uint, status model.LeaseStatus, active bool) model.Lease {
	l := model.Lease{
		ApplicationID: appID,
		TenantID:      tenantID,
		PropertyID:    propertyID,
		Status:        status,
		IsActive:      active,
	}
	l.ID = id
	return l
}

func uintPtr(v uint) *uint { return &v }

func TestEffectiveStatusLeaseMapping(t *testing.T) {
	app := model.Application{TenantID: 1, PropertyID: 1, Status: model.ApplicationStatusApproved}
	app.ID = 10

	cases := []struct {
		leaseStatus model.LeaseStatus
		want        model.ApplicationStatus
	}{
		{model.LeaseStatusDraft, model.ApplicationStatusLeaseCreated},
		{model.LeaseStatusSentToTenant, model.ApplicationStatusLeaseCreated},
		{model.LeaseStatusSigned, model.ApplicationStatusLeaseSigned},
		{model.LeaseStatusActive, model.ApplicationStatusMovedIn},
	}

	for _, tc := range cases {
		t.Run(string(tc.leaseStatus), func(t *testing.T) {
			leases := []model.Lease{lease(1, uintPtr(10), 1, 1, tc.leaseStatus, false)}

			derived := EffectiveStatus(app, leases)
			assert.Equal(t, tc.want, derived.Status)
			require.NotNil(t, derived.LeaseID)
			assert.Equal(t, uint(1), *derived.LeaseID)
		})
	}
}

func TestEffectiveStatusUnmappedLeaseKeepsStored(t *testing.T) {
	app := model.Application{TenantID: 1, PropertyID: 1, Status: model.ApplicationStatusApproved}
	app.ID = 10

	// an ended lease no longer drives the application status
	leases := []model.Lease{lease(1, uintPtr(10), 1, 1, model.LeaseStatusEnded, false)}

	derived := EffectiveStatus(app, leases)
	assert.Equal(t, model.ApplicationStatusApproved, derived.Status)
}

func TestEffectiveStatusHighestLeaseWins(t *testing.T) {
	app := model.Application{TenantID: 1, PropertyID: 1, Status: model.ApplicationStatusApproved}
	app.ID = 10

	leases := []model.Lease{
		lease(4, uintPtr(10), 1, 1, model.LeaseStatusSigned, false),
		lease(2, uintPtr(10), 1, 1, model.LeaseStatusDraft, false),
	}

	derived := EffectiveStatus(app, leases)
	assert.Equal(t, model.ApplicationStatusLeaseSigned, derived.Status)
	assert.Equal(t, uint(4), *derived.LeaseID)

	// order of the slice must not matter
	derived = EffectiveStatus(app, []model.Lease{leases[1], leases[0]})
	assert.Equal(t, uint(4), *derived.LeaseID)
}

func TestEffectiveStatusLegacyFallback(t *testing.T) {
	app := model.Application{TenantID: 5, PropertyID: 9, Status: model.ApplicationStatusApproved}
	app.ID = 10

	t.Run("active lease on tenant and property means moved in", func(t *testing.T) {
		leases := []model.Lease{lease(1, nil, 5, 9, model.LeaseStatusActive, true)}

		derived := EffectiveStatus(app, leases)
		assert.Equal(t, model.ApplicationStatusMovedIn, derived.Status)
	})

	t.Run("draft lease on tenant and property means lease created", func(t *testing.T) {
		leases := []model.Lease{lease(1, nil, 5, 9, model.LeaseStatusDraft, false)}

		derived := EffectiveStatus(app, leases)
		assert.Equal(t, model.ApplicationStatusLeaseCreated, derived.Status)
	})

	t.Run("direct link beats legacy fallback", func(t *testing.T) {
		leases := []model.Lease{
			lease(1, nil, 5, 9, model.LeaseStatusActive, true),
			lease(2, uintPtr(10), 5, 9, model.LeaseStatusDraft, false),
		}

		derived := EffectiveStatus(app, leases)
		assert.Equal(t, model.ApplicationStatusLeaseCreated, derived.Status)
		assert.Equal(t, uint(2), *derived.LeaseID)
	})

	t.Run("other tenants leases are ignored", func(t *testing.T) {
		leases := []model.Lease{lease(1, nil, 6, 9, model.LeaseStatusActive, true)}

		derived := EffectiveStatus(app, leases)
		assert.Equal(t, model.ApplicationStatusApproved, derived.Status)
		assert.Nil(t, derived.LeaseID)
	})
}

func TestEffectiveStatusWithoutLeases(t *testing.T) {
	for _, status := range []model.ApplicationStatus{
		model.ApplicationStatusPending,
		model.ApplicationStatusRejected,
		model.ApplicationStatusViewingScheduled,
	} {
		app := model.Application{TenantID: 1, PropertyID: 1, Status: status}
		derived := EffectiveStatus(app, nil)
		assert.Equal(t, status, derived.Status)
		assert.Nil(t, derived.Lease)
	}
}

// EffectiveStatus must not mutate its inputs; the list handler derives many
// applications against the same lease slice.
func TestEffectiveStatusIsPure(t *testing.T) {
	app := model.Application{TenantID: 1, PropertyID: 1, Status: model.ApplicationStatusPending}
	app.ID = 10
	leases := []model.Lease{
		lease(1, uintPtr(10), 1, 1, model.LeaseStatusDraft, false),
		lease(2, nil, 1, 1, model.LeaseStatusActive, true),
	}

	_ = EffectiveStatus(app, leases)
	_ = EffectiveStatus(app, leases)

	assert.Equal(t, model.ApplicationStatusPending, app.Status)
	assert.Equal(t, model.LeaseStatusDraft, leases[0].Status)
	assert.Equal(t, uint(1), leases[0].ID)
}
