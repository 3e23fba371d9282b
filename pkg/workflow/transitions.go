package workflow

import (
	"fmt"

	"tink_backend/internal/model"
)

// Action is a lifecycle operation requested against an application.
type Action string

const (
	ActionQualify         Action = "qualify"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionAssignRoom      Action = "assign_room"
	ActionScheduleViewing Action = "schedule_viewing"
	ActionCompleteViewing Action = "complete_viewing"
	ActionSkipViewing     Action = "skip_viewing"
	ActionGenerateLease   Action = "generate_lease"
	ActionActivateLease   Action = "activate_lease"
	ActionSendToTenant    Action = "send_to_tenant"
	ActionMoveOut         Action = "move_out"
)

// Decision is the outcome of gating an action against the current status.
type Decision struct {
	Allowed bool
	Reason  string
}

type transitionRule struct {
	allowed map[model.ApplicationStatus]bool
	// denials overrides the default denial message per status
	denials map[model.ApplicationStatus]string
	// defaultDenial formats the catch-all message; %s is the current status
	defaultDenial string
}

func statuses(list ...model.ApplicationStatus) map[model.ApplicationStatus]bool {
	m := make(map[model.ApplicationStatus]bool, len(list))
	for _, s := range list {
		m[s] = true
	}
	return m
}

// transitionTable encodes every guarded transition as data so the rule set
// can be checked exhaustively in tests instead of living in nested
// conditionals across handlers.
var transitionTable = map[Action]transitionRule{
	ActionQualify: {
		// qualify on a rejected application is an undo back to pending
		allowed:       statuses(model.ApplicationStatusPending, model.ApplicationStatusRejected),
		defaultDenial: "Cannot qualify application in %s status.",
	},
	ActionApprove: {
		allowed: statuses(
			model.ApplicationStatusPending,
			model.ApplicationStatusViewingCompleted,
			model.ApplicationStatusProcessing,
		),
		denials: map[model.ApplicationStatus]string{
			model.ApplicationStatusRejected: "Cannot approve a rejected application. Restore it to pending first.",
			model.ApplicationStatusApproved: "Application is already approved.",
		},
		defaultDenial: "Cannot approve application in %s status.",
	},
	ActionReject: {
		allowed: statuses(
			model.ApplicationStatusPending,
			model.ApplicationStatusApproved,
			model.ApplicationStatusViewingScheduled,
			model.ApplicationStatusViewingCompleted,
			model.ApplicationStatusRoomAssigned,
			model.ApplicationStatusProcessing,
		),
		denials: map[model.ApplicationStatus]string{
			model.ApplicationStatusRejected: "Application is already rejected.",
		},
		defaultDenial: "Application cannot be rejected in %s status.",
	},
	ActionAssignRoom: {
		allowed: statuses(
			model.ApplicationStatusApproved,
			model.ApplicationStatusViewingCompleted,
			model.ApplicationStatusProcessing,
		),
		defaultDenial: "Cannot assign room for application in %s status.",
	},
	ActionScheduleViewing: {
		allowed:       statuses(model.ApplicationStatusApproved),
		defaultDenial: "Cannot setup viewing for application in %s status.",
	},
	ActionCompleteViewing: {
		allowed:       statuses(model.ApplicationStatusViewingScheduled),
		defaultDenial: "Cannot complete viewing for application in %s status.",
	},
	ActionSkipViewing: {
		allowed: statuses(model.ApplicationStatusApproved),
		denials: map[model.ApplicationStatus]string{
			model.ApplicationStatusViewingScheduled: "A viewing is already scheduled. Complete or cancel it instead of skipping.",
		},
		defaultDenial: "Only approved applications can skip viewing (current status: %s).",
	},
	ActionGenerateLease: {
		allowed: statuses(
			model.ApplicationStatusRoomAssigned,
			model.ApplicationStatusViewingCompleted,
			model.ApplicationStatusProcessing,
		),
		denials: map[model.ApplicationStatus]string{
			model.ApplicationStatusPending:          "Application must be approved before generating lease.",
			model.ApplicationStatusApproved:         "Please complete or skip viewing before generating lease.",
			model.ApplicationStatusViewingScheduled: "Please complete the scheduled viewing first.",
			model.ApplicationStatusRejected:         "Cannot generate lease for rejected applications.",
			model.ApplicationStatusLeaseCreated:     "Lease has already been generated for this application.",
			model.ApplicationStatusLeaseSigned:      "Lease is already signed for this application.",
			model.ApplicationStatusMovedIn:          "Tenant has already moved in.",
			model.ApplicationStatusActive:           "Lease is already active for this tenant.",
		},
		defaultDenial: "Lease cannot be generated from status: %s.",
	},
	ActionActivateLease: {
		allowed: statuses(
			model.ApplicationStatusLeaseCreated,
			model.ApplicationStatusLeaseSigned,
		),
		defaultDenial: "Cannot activate lease for application in %s status.",
	},
	ActionSendToTenant: {
		allowed:       statuses(model.ApplicationStatusLeaseCreated),
		defaultDenial: "Cannot send lease for application in %s status.",
	},
	ActionMoveOut: {
		allowed: statuses(
			model.ApplicationStatusMovedIn,
			model.ApplicationStatusActive,
		),
		defaultDenial: "Cannot process move-out for application in %s status.",
	},
}

// Gate decides whether an action is legal from the given status. Denials
// carry a human-readable reason referencing the current status.
func Gate(action Action, status model.ApplicationStatus) Decision {
	rule, ok := transitionTable[action]
	if !ok {
		return Decision{Allowed: false, Reason: fmt.Sprintf("Unknown action: %s.", action)}
	}
	if rule.allowed[status] {
		return Decision{Allowed: true}
	}
	if msg, ok := rule.denials[status]; ok {
		return Decision{Allowed: false, Reason: msg}
	}
	return Decision{Allowed: false, Reason: fmt.Sprintf(rule.defaultDenial, status)}
}

// Actions lists every action in the transition table.
func Actions() []Action {
	out := make([]Action, 0, len(transitionTable))
	for a := range transitionTable {
		out = append(out, a)
	}
	return out
}

// QualifyIsUndo reports whether a qualify request against this status is an
// undo of a rejection rather than a true qualification.
func QualifyIsUndo(status model.ApplicationStatus) bool {
	return status == model.ApplicationStatusRejected
}
