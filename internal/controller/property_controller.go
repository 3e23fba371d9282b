package controller

import (
	"log"

	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/database"
	"tink_backend/pkg/utils/image"
	"tink_backend/pkg/utils/storage"

	"github.com/gofiber/fiber/v2"
)

type PropertyInput struct {
	Name         string  `json:"name" validate:"required"`
	PropertyType string  `json:"property_type"`
	RentType     string  `json:"rent_type"`
	MonthlyRent  float64 `json:"monthly_rent"`
	Description  string  `json:"description"`
	AddressLine1 string  `json:"address_line1"`
	AddressLine2 string  `json:"address_line2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	PostalCode   string  `json:"postal_code"`
	Country      string  `json:"country"`
	IsListed     *bool   `json:"is_listed"`
}

func GetMyProperties(c *fiber.Ctx) error {
	claims := currentUser(c)

	var properties []model.Property
	if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
		Preload("Rooms").Preload("Images").
		Order("created_at DESC").Find(&properties).Error; err != nil {
		return respondDBError(c, "Could not fetch properties", err)
	}

	return c.JSON(properties)
}

func GetProperty(c *fiber.Ctx) error {
	claims := currentUser(c)

	var property model.Property
	if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
		Preload("Rooms").Preload("Images").
		First(&property, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Property not found", err)
	}

	return c.JSON(property)
}

func CreateProperty(c *fiber.Ctx) error {
	claims := currentUser(c)

	input := new(PropertyInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}
	if input.Name == "" {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Property name is required"))
	}

	rentType := model.RentPerProperty
	if input.RentType == string(model.RentPerRoom) {
		rentType = model.RentPerRoom
	}

	property := model.Property{
		UserID:       claims.UserID,
		Name:         input.Name,
		PropertyType: model.PropertyType(input.PropertyType),
		RentType:     rentType,
		MonthlyRent:  input.MonthlyRent,
		Description:  input.Description,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Country:      input.Country,
		IsListed:     true,
	}
	if input.IsListed != nil {
		property.IsListed = *input.IsListed
	}

	if err := database.GetDB().Create(&property).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not create property", err))
	}

	return c.Status(fiber.StatusCreated).JSON(property)
}

func UpdateProperty(c *fiber.Ctx) error {
	claims := currentUser(c)

	var property model.Property
	if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
		First(&property, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Property not found", err)
	}

	input := new(PropertyInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	updates := map[string]interface{}{
		"name":          input.Name,
		"property_type": input.PropertyType,
		"monthly_rent":  input.MonthlyRent,
		"description":   input.Description,
		"address_line1": input.AddressLine1,
		"address_line2": input.AddressLine2,
		"city":          input.City,
		"state":         input.State,
		"postal_code":   input.PostalCode,
		"country":       input.Country,
	}
	if input.RentType != "" {
		updates["rent_type"] = input.RentType
	}
	if input.IsListed != nil {
		updates["is_listed"] = *input.IsListed
	}

	if err := database.GetDB().Model(&property).Updates(updates).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not update property", err))
	}

	return c.JSON(property)
}

func DeleteProperty(c *fiber.Ctx) error {
	claims := currentUser(c)

	var property model.Property
	if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
		First(&property, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Property not found", err)
	}

	var activeLeases int64
	database.GetDB().Model(&model.Lease{}).
		Where("property_id = ? AND is_active = ?", property.ID, true).
		Count(&activeLeases)
	if activeLeases > 0 {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Properties with active leases cannot be deleted"))
	}

	if err := database.GetDB().Delete(&property).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not delete property", err))
	}

	return c.JSON(fiber.Map{"message": "Property deleted successfully"})
}

func UploadPropertyImage(c *fiber.Ctx) error {
	claims := currentUser(c)

	var property model.Property
	if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
		First(&property, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Property not found", err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Image file is required"))
	}

	buf, contentType, err := image.ProcessImage(file)
	if err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, err.Error()))
	}

	url, err := storage.UploadPropertyImage(buf, contentType, property.Slug, file.Filename)
	if err != nil {
		log.Printf("property image upload failed: %v", err)
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not upload image", err))
	}

	img := model.PropertyImage{
		PropertyID: property.ID,
		URL:        url,
		IsCover:    c.FormValue("is_cover") == "true",
	}
	if err := database.GetDB().Create(&img).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not save image", err))
	}

	return c.Status(fiber.StatusCreated).JSON(img)
}

func DeletePropertyImage(c *fiber.Ctx) error {
	claims := currentUser(c)

	var property model.Property
	if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
		First(&property, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Property not found", err)
	}

	var img model.PropertyImage
	if err := database.GetDB().
		Where("property_id = ?", property.ID).
		First(&img, "id = ?", c.Params("imageId")).Error; err != nil {
		return respondDBError(c, "Image not found", err)
	}

	if err := storage.DeleteFile(img.URL); err != nil {
		log.Printf("could not remove stored image %s: %v", img.URL, err)
	}

	if err := database.GetDB().Delete(&img).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not delete image", err))
	}

	return c.JSON(fiber.Map{"message": "Image deleted successfully"})
}
