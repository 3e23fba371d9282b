package controller

import (
	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/database"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RoomInput struct {
	Name            string  `json:"name" validate:"required"`
	RoomNumber      string  `json:"room_number"`
	RoomType        string  `json:"room_type"`
	Floor           string  `json:"floor"`
	Status          string  `json:"status"`
	MonthlyRent     float64 `json:"monthly_rent"`
	SecurityDeposit float64 `json:"security_deposit"`
}

func GetPropertyRooms(c *fiber.Ctx) error {
	claims := currentUser(c)

	var property model.Property
	if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
		First(&property, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Property not found", err)
	}

	var rooms []model.Room
	if err := database.GetDB().Where("property_id = ?", property.ID).
		Order("id ASC").Find(&rooms).Error; err != nil {
		return respondDBError(c, "Could not fetch rooms", err)
	}

	return c.JSON(rooms)
}

func CreateRoom(c *fiber.Ctx) error {
	claims := currentUser(c)

	var property model.Property
	if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
		First(&property, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Property not found", err)
	}

	input := new(RoomInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}
	if input.Name == "" {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Room name is required"))
	}

	room := model.Room{
		PropertyID:      property.ID,
		Name:            input.Name,
		RoomNumber:      input.RoomNumber,
		RoomType:        input.RoomType,
		Floor:           input.Floor,
		Status:          model.RoomStatusAvailable,
		MonthlyRent:     input.MonthlyRent,
		SecurityDeposit: input.SecurityDeposit,
		IsVacant:        true,
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		return property.RecountVacancy(tx)
	})
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not create room", err))
	}

	return c.Status(fiber.StatusCreated).JSON(room)
}

func UpdateRoom(c *fiber.Ctx) error {
	claims := currentUser(c)

	var property model.Property
	if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
		First(&property, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Property not found", err)
	}

	var room model.Room
	if err := database.GetDB().Where("property_id = ?", property.ID).
		First(&room, "id = ?", c.Params("roomId")).Error; err != nil {
		return respondDBError(c, "Room not found", err)
	}

	input := new(RoomInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	updates := map[string]interface{}{
		"name":             input.Name,
		"room_number":      input.RoomNumber,
		"room_type":        input.RoomType,
		"floor":            input.Floor,
		"monthly_rent":     input.MonthlyRent,
		"security_deposit": input.SecurityDeposit,
	}
	if input.Status != "" {
		switch model.RoomStatus(input.Status) {
		case model.RoomStatusAvailable, model.RoomStatusOccupied, model.RoomStatusMaintenance:
			updates["status"] = input.Status
			updates["is_vacant"] = model.RoomStatus(input.Status) == model.RoomStatusAvailable
		default:
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid room status"))
		}
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&room).Updates(updates).Error; err != nil {
			return err
		}
		return property.RecountVacancy(tx)
	})
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not update room", err))
	}

	return c.JSON(room)
}

func DeleteRoom(c *fiber.Ctx) error {
	claims := currentUser(c)

	var property model.Property
	if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
		First(&property, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Property not found", err)
	}

	var room model.Room
	if err := database.GetDB().Where("property_id = ?", property.ID).
		First(&room, "id = ?", c.Params("roomId")).Error; err != nil {
		return respondDBError(c, "Room not found", err)
	}

	var activeLeases int64
	database.GetDB().Model(&model.Lease{}).
		Where("room_id = ? AND is_active = ?", room.ID, true).
		Count(&activeLeases)
	if activeLeases > 0 {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Rooms with active leases cannot be deleted"))
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&room).Error; err != nil {
			return err
		}
		return property.RecountVacancy(tx)
	})
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not delete room", err))
	}

	return c.JSON(fiber.Map{"message": "Room deleted successfully"})
}
