package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ViewingStatus string

const (
	ViewingStatusScheduled ViewingStatus = "scheduled"
	ViewingStatusCompleted ViewingStatus = "completed"
	ViewingStatusCancelled ViewingStatus = "cancelled"
)

type ViewingOutcome string

const (
	ViewingOutcomePositive ViewingOutcome = "positive"
	ViewingOutcomeNegative ViewingOutcome = "negative"
	ViewingOutcomeNeutral  ViewingOutcome = "neutral"
)

// Viewing is a scheduled property tour tied to an application.
type Viewing struct {
	gorm.Model
	ApplicationID uint `json:"application" gorm:"index;not null"`

	ScheduledDate time.Time `json:"scheduled_date"`
	ScheduledTime string    `json:"scheduled_time"`
	ContactPerson string    `json:"contact_person"`
	ContactPhone  string    `json:"contact_phone"`
	Notes         string    `json:"viewing_notes" gorm:"type:text"`

	Status  ViewingStatus  `json:"status" gorm:"default:'scheduled'"`
	Outcome ViewingOutcome `json:"outcome"`

	// Completion feedback (tenant_feedback, landlord_notes, next_action)
	Feedback datatypes.JSON `json:"feedback"`

	Application Application `json:"application_detail,omitempty" gorm:"foreignKey:ApplicationID"`
}
