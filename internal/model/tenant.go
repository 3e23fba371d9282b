package model

import "gorm.io/gorm"

type Tenant struct {
	gorm.Model
	UserID   uint   `json:"landlord" gorm:"uniqueIndex:idx_user_tenant_email;not null"`
	FullName string `json:"full_name" gorm:"not null"`
	Email    string `json:"email" gorm:"uniqueIndex:idx_user_tenant_email;not null"`
	Phone    string `json:"phone"`

	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	CurrentAddress        string `json:"current_address"`
	Notes                 string `json:"notes" gorm:"type:text"`

	// İlişkiler
	User         User             `json:"-" gorm:"foreignKey:UserID"`
	Applications []Application    `json:"-" gorm:"foreignKey:TenantID"`
	Documents    []TenantDocument `json:"documents,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}

// TenantDocument is an uploaded identity or income document kept in object storage.
type TenantDocument struct {
	gorm.Model
	TenantID     uint   `json:"tenant" gorm:"index;not null"`
	DocumentType string `json:"document_type" gorm:"not null"`
	FileURL      string `json:"file_url" gorm:"not null"`
	Notes        string `json:"notes"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID"`
}
