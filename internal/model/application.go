package model

import (
	"time"

	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationStatusPending          ApplicationStatus = "pending"
	ApplicationStatusApproved         ApplicationStatus = "approved"
	ApplicationStatusRejected         ApplicationStatus = "rejected"
	ApplicationStatusViewingScheduled ApplicationStatus = "viewing_scheduled"
	ApplicationStatusViewingCompleted ApplicationStatus = "viewing_completed"
	ApplicationStatusRoomAssigned     ApplicationStatus = "room_assigned"
	ApplicationStatusProcessing       ApplicationStatus = "processing"
	ApplicationStatusLeaseCreated     ApplicationStatus = "lease_created"
	ApplicationStatusLeaseSigned      ApplicationStatus = "lease_signed"
	ApplicationStatusMovedIn          ApplicationStatus = "moved_in"
	ApplicationStatusActive           ApplicationStatus = "active"
)

// Application is a prospective tenant's request to rent a property or room.
// The stored status only tells part of the story: once a lease exists the
// effective status is derived from it (see pkg/workflow).
type Application struct {
	gorm.Model
	TenantID   uint  `json:"tenant" gorm:"index;not null"`
	PropertyID uint  `json:"property_ref" gorm:"index;not null"`
	RoomID     *uint `json:"room"`

	Status ApplicationStatus `json:"status" gorm:"default:'pending'"`

	DesiredMoveInDate *time.Time `json:"desired_move_in_date"`
	RentBudget        float64    `json:"rent_budget"`
	Message           string     `json:"message" gorm:"type:text"`

	DecisionNotes   string `json:"decision_notes"`
	RejectionReason string `json:"rejection_reason"`

	DaysPending int `json:"days_pending" gorm:"default:0"`

	// İlişkiler
	Tenant   Tenant    `json:"tenant_detail,omitempty" gorm:"foreignKey:TenantID"`
	Property Property  `json:"-" gorm:"foreignKey:PropertyID"`
	Room     *Room     `json:"-" gorm:"foreignKey:RoomID"`
	Viewings []Viewing `json:"viewings,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}
