package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// RentType determines whether a property is rented as a whole or room by room.
type RentType string

const (
	RentPerProperty RentType = "per_property"
	RentPerRoom     RentType = "per_room"
)

type PropertyType string

const (
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeCondo     PropertyType = "condo"
	PropertyTypeTownhouse PropertyType = "townhouse"
	PropertyTypeDuplex    PropertyType = "duplex"
	PropertyTypeOther     PropertyType = "other"
)

type Property struct {
	gorm.Model
	Name         string       `json:"name" gorm:"not null"`
	Slug         string       `json:"slug" gorm:"uniqueIndex:idx_user_property_slug;not null"`
	PropertyType PropertyType `json:"property_type" gorm:"not null"`
	RentType     RentType     `json:"rent_type" gorm:"not null;default:'per_property'"`
	MonthlyRent  float64      `json:"monthly_rent"`
	Description  string       `json:"description" gorm:"type:text"`

	UserID uint `json:"landlord" gorm:"uniqueIndex:idx_user_property_slug"`

	// Location fields
	AddressLine1 string `json:"address_line1" gorm:"not null"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" gorm:"not null"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Timezone     string `json:"timezone"`

	// Occupancy counters, kept in sync by room mutations and the vacancy cron
	TotalRooms  int `json:"total_rooms" gorm:"default:0"`
	VacantRooms int `json:"vacant_rooms" gorm:"default:0"`

	// no gorm default: a tagged default would swallow explicit false on insert,
	// delisted properties would show up on the public site
	IsListed bool `json:"is_listed"`

	// İlişkiler
	User   User            `json:"-" gorm:"foreignKey:UserID"`
	Rooms  []Room          `json:"rooms,omitempty" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	Images []PropertyImage `json:"images" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

type PropertyImage struct {
	gorm.Model
	PropertyID uint   `json:"property_id"`
	URL        string `json:"url" gorm:"not null"`
	IsCover    bool   `json:"is_cover" gorm:"default:false"`
	Order      int    `json:"order" gorm:"default:0"`

	Property Property `json:"-" gorm:"foreignKey:PropertyID"`
}

// FullAddress joins the address parts for display and lease documents.
func (p *Property) FullAddress() string {
	addr := p.AddressLine1
	if p.AddressLine2 != "" {
		addr += ", " + p.AddressLine2
	}
	if p.City != "" {
		addr += ", " + p.City
	}
	if p.State != "" {
		addr += " " + p.State
	}
	if p.PostalCode != "" {
		addr += " " + p.PostalCode
	}
	return addr
}

// BeforeCreate property oluşturulurken slug'ı otomatik oluşturur
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		s := slug.Make(p.Name)

		// Slug aynı landlord altında benzersiz olmalı
		var count int64
		tx.Model(&Property{}).Where("user_id = ? AND slug = ?", p.UserID, s).Count(&count)
		if count > 0 {
			s = s + "-" + p.CreatedAt.Format("20060102")
		}

		p.Slug = s
	}
	return nil
}

// RecountVacancy refreshes the cached room counters from the rooms table.
func (p *Property) RecountVacancy(tx *gorm.DB) error {
	var total, vacant int64
	if err := tx.Model(&Room{}).Where("property_id = ?", p.ID).Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&Room{}).
		Where("property_id = ? AND is_vacant = ? AND status <> ?", p.ID, true, RoomStatusMaintenance).
		Count(&vacant).Error; err != nil {
		return err
	}

	p.TotalRooms = int(total)
	p.VacantRooms = int(vacant)
	return tx.Model(p).Updates(map[string]interface{}{
		"total_rooms":  p.TotalRooms,
		"vacant_rooms": p.VacantRooms,
	}).Error
}
