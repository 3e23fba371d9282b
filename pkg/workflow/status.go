// Package workflow holds the application lifecycle rules: effective status
// derivation, transition gating, quick-approve planning and move-out math.
// It is pure (no database or HTTP), so every rule is testable in isolation.
package workflow

import (
	"tink_backend/internal/model"
)

// leaseStatusMap is the fixed lease→application status table. An application
// with a lease is displayed by how far the lease has progressed, not by its
// own stored status.
var leaseStatusMap = map[model.LeaseStatus]model.ApplicationStatus{
	model.LeaseStatusDraft:        model.ApplicationStatusLeaseCreated,
	model.LeaseStatusSentToTenant: model.ApplicationStatusLeaseCreated,
	model.LeaseStatusSigned:       model.ApplicationStatusLeaseSigned,
	model.LeaseStatusActive:       model.ApplicationStatusMovedIn,
}

// LeaseStage maps a lease status to the application status it implies, so
// lease handlers can run their own checks through the transition gate. The
// second return is false for statuses the table does not cover (ended).
func LeaseStage(status model.LeaseStatus) (model.ApplicationStatus, bool) {
	stage, ok := leaseStatusMap[status]
	return stage, ok
}

// Derived is an application status after cross-referencing leases.
type Derived struct {
	Status  model.ApplicationStatus
	Lease   *model.Lease
	LeaseID *uint
}

// EffectiveStatus derives the displayed status of an application from the
// full lease set. Matching precedence:
//  1. a lease that references the application directly; when several do,
//     the highest lease ID (most recently created) wins,
//  2. legacy fallback on tenant+property: an active lease means moved_in,
//     a draft lease means lease_created,
//  3. otherwise the stored status stands.
func EffectiveStatus(app model.Application, leases []model.Lease) Derived {
	if lease := bestMatch(leases, func(l model.Lease) bool {
		return l.ApplicationID != nil && *l.ApplicationID == app.ID
	}); lease != nil {
		status, ok := leaseStatusMap[lease.Status]
		if !ok {
			status = app.Status
		}
		return Derived{Status: status, Lease: lease, LeaseID: &lease.ID}
	}

	if lease := bestMatch(leases, func(l model.Lease) bool {
		return l.TenantID == app.TenantID && l.PropertyID == app.PropertyID &&
			(l.Status == model.LeaseStatusActive || l.IsActive)
	}); lease != nil {
		return Derived{Status: model.ApplicationStatusMovedIn, Lease: lease, LeaseID: &lease.ID}
	}

	if lease := bestMatch(leases, func(l model.Lease) bool {
		return l.TenantID == app.TenantID && l.PropertyID == app.PropertyID &&
			l.Status == model.LeaseStatusDraft
	}); lease != nil {
		return Derived{Status: model.ApplicationStatusLeaseCreated, Lease: lease, LeaseID: &lease.ID}
	}

	return Derived{Status: app.Status}
}

// bestMatch returns the matching lease with the highest ID, so derivation is
// deterministic regardless of query order.
func bestMatch(leases []model.Lease, match func(model.Lease) bool) *model.Lease {
	var best *model.Lease
	for i := range leases {
		if !match(leases[i]) {
			continue
		}
		if best == nil || leases[i].ID > best.ID {
			best = &leases[i]
		}
	}
	return best
}
