package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LeaseStatus string

const (
	LeaseStatusDraft        LeaseStatus = "draft"
	LeaseStatusSentToTenant LeaseStatus = "sent_to_tenant"
	LeaseStatusSigned       LeaseStatus = "signed"
	LeaseStatusActive       LeaseStatus = "active"
	LeaseStatusEnded        LeaseStatus = "ended"
)

type Lease struct {
	gorm.Model
	ApplicationID *uint `json:"application" gorm:"index"`
	TenantID      uint  `json:"tenant" gorm:"index;not null"`
	PropertyID    uint  `json:"property_ref" gorm:"index;not null"`
	RoomID        *uint `json:"room"`

	StartDate       time.Time `json:"start_date" gorm:"not null"`
	EndDate         time.Time `json:"end_date" gorm:"not null"`
	MonthlyRent     float64   `json:"monthly_rent" gorm:"not null"`
	SecurityDeposit float64   `json:"security_deposit"`

	Status   LeaseStatus `json:"status" gorm:"default:'draft'"`
	IsActive bool        `json:"is_active" gorm:"default:false"`

	DecisionNotes string `json:"decision_notes"`
	CreatedByID   uint   `json:"created_by"`

	SentToTenantAt *time.Time `json:"sent_to_tenant_at"`
	SignedAt       *time.Time `json:"signed_at"`
	ActivatedAt    *time.Time `json:"activated_at"`

	// Populated by move-out processing (date, condition, charges, deposit returned)
	MoveOutDetails datatypes.JSON `json:"move_out_details"`

	// İlişkiler
	Application *Application `json:"-" gorm:"foreignKey:ApplicationID"`
	Tenant      Tenant       `json:"tenant_detail,omitempty" gorm:"foreignKey:TenantID"`
	Property    Property     `json:"-" gorm:"foreignKey:PropertyID"`
	Room        *Room        `json:"-" gorm:"foreignKey:RoomID"`
	CreatedBy   User         `json:"-" gorm:"foreignKey:CreatedByID"`
}

// MoveOutRecord is serialized into Lease.MoveOutDetails when a move-out is processed.
type MoveOutRecord struct {
	MoveOutDate      string  `json:"move_out_date"`
	MoveOutCondition string  `json:"move_out_condition"`
	CleaningCharges  float64 `json:"cleaning_charges"`
	DamageCharges    float64 `json:"damage_charges"`
	DepositReturned  float64 `json:"deposit_returned"`
	RentForgo        float64 `json:"rent_forgo"`
}
