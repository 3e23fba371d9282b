package seed

import (
	"log"

	"tink_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedDemoData creates a demo landlord with one per-room property, so a
// fresh install has something to click through. Safe to run repeatedly.
func SeedDemoData(db *gorm.DB) {
	var count int64
	db.Model(&model.User{}).Where("email = ?", "demo@tink.test").Count(&count)
	if count > 0 {
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing demo password: %v", err)
		return
	}

	landlord := model.User{
		Email:       "demo@tink.test",
		Password:    string(hashed),
		Role:        model.RoleLandlord,
		FirstName:   "Demo",
		LastName:    "Landlord",
		CompanyName: "Tink Demo Properties",
		IsActive:    true,
	}
	if err := db.Create(&landlord).Error; err != nil {
		log.Printf("Error creating demo landlord: %v", err)
		return
	}

	property := model.Property{
		UserID:       landlord.ID,
		Name:         "Maple Street House",
		PropertyType: model.PropertyTypeHouse,
		RentType:     model.RentPerRoom,
		Description:  "Shared house close to the city center.",
		AddressLine1: "12 Maple Street",
		City:         "Springfield",
		State:        "IL",
		PostalCode:   "62704",
		Country:      "US",
		IsListed:     true,
	}
	if err := db.Create(&property).Error; err != nil {
		log.Printf("Error creating demo property: %v", err)
		return
	}

	rooms := []model.Room{
		{PropertyID: property.ID, Name: "Room A", RoomNumber: "1", Floor: "1", Status: model.RoomStatusAvailable, MonthlyRent: 650, SecurityDeposit: 1300, IsVacant: true},
		{PropertyID: property.ID, Name: "Room B", RoomNumber: "2", Floor: "1", Status: model.RoomStatusAvailable, MonthlyRent: 700, SecurityDeposit: 1400, IsVacant: true},
		{PropertyID: property.ID, Name: "Room C", RoomNumber: "3", Floor: "2", Status: model.RoomStatusMaintenance, MonthlyRent: 600, SecurityDeposit: 1200, IsVacant: true},
	}
	for _, room := range rooms {
		if err := db.Create(&room).Error; err != nil {
			log.Printf("Error creating demo room %s: %v", room.Name, err)
		}
	}
	if err := property.RecountVacancy(db); err != nil {
		log.Printf("Error recounting demo property vacancy: %v", err)
	}

	tenant := model.Tenant{
		UserID:   landlord.ID,
		FullName: "Alice Example",
		Email:    "alice@example.com",
		Phone:    "+1 555 0100",
	}
	if err := db.Create(&tenant).Error; err != nil {
		log.Printf("Error creating demo tenant: %v", err)
		return
	}

	application := model.Application{
		TenantID:   tenant.ID,
		PropertyID: property.ID,
		Status:     model.ApplicationStatusPending,
		RentBudget: 680,
		Message:    "Looking for a room from next month.",
	}
	if err := db.Create(&application).Error; err != nil {
		log.Printf("Error creating demo application: %v", err)
		return
	}

	log.Println("Demo data seeded successfully!")
}
