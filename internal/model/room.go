package model

import "gorm.io/gorm"

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

type Room struct {
	gorm.Model
	PropertyID uint       `json:"property" gorm:"index;not null"`
	Name       string     `json:"name" gorm:"not null"`
	RoomNumber string     `json:"room_number"`
	RoomType   string     `json:"room_type"`
	Floor      string     `json:"floor"`
	Status     RoomStatus `json:"status" gorm:"default:'available'"`

	MonthlyRent     float64 `json:"monthly_rent"`
	SecurityDeposit float64 `json:"security_deposit"`

	// no gorm default: a tagged default would swallow explicit false on insert
	IsVacant bool `json:"is_vacant"`

	// İlişkiler
	Property Property `json:"-" gorm:"foreignKey:PropertyID"`
}

// IsAssignable reports whether the room can be offered to an applicant.
func (r *Room) IsAssignable() bool {
	return r.IsVacant && r.Status != RoomStatusMaintenance
}
