package model

import (
	"strings"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleLandlord UserRole = "landlord"
	RoleManager  UserRole = "manager"
)

type User struct {
	gorm.Model
	Email    string   `json:"email" gorm:"uniqueIndex;not null"`
	Password string   `json:"-" gorm:"not null"`
	Role     UserRole `json:"role" gorm:"not null;default:'landlord'"`

	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	PhoneNumber string `json:"phone_number"`
	Avatar      string `json:"avatar"`

	IsActive bool `json:"is_active" gorm:"default:true"`

	// İlişkiler
	Properties []Property `json:"-"`
}

func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":           u.ID,
		"email":        u.Email,
		"role":         u.Role,
		"full_name":    u.GetFullName(),
		"company_name": u.CompanyName,
		"phone_number": u.PhoneNumber,
		"avatar":       u.Avatar,
		"is_active":    u.IsActive,
	}
}
