package model

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type PaymentKind string

const (
	PaymentKindRent    PaymentKind = "rent"
	PaymentKindDeposit PaymentKind = "deposit"
)

// RentPayment tracks a single rent or deposit collection against a lease.
type RentPayment struct {
	gorm.Model
	LeaseID  uint `json:"lease" gorm:"index;not null"`
	TenantID uint `json:"tenant" gorm:"index;not null"`

	Kind        PaymentKind   `json:"kind" gorm:"default:'rent'"`
	Amount      float64       `json:"amount" gorm:"not null"`
	PeriodStart time.Time     `json:"period_start"`
	PeriodEnd   time.Time     `json:"period_end"`
	Status      PaymentStatus `json:"status" gorm:"default:'pending'"`

	StripePaymentIntentID string     `json:"stripe_payment_intent_id" gorm:"index"`
	PaidAt                *time.Time `json:"paid_at"`
	Notes                 string     `json:"notes"`

	// İlişkiler
	Lease  Lease  `json:"-" gorm:"foreignKey:LeaseID"`
	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
}
