package controller

import (
	"log"

	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/database"
	"tink_backend/pkg/utils/storage"

	"github.com/gofiber/fiber/v2"
)

type TenantInput struct {
	FullName              string `json:"full_name" validate:"required"`
	Email                 string `json:"email" validate:"required,email"`
	Phone                 string `json:"phone"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	CurrentAddress        string `json:"current_address"`
	Notes                 string `json:"notes"`
}

func GetTenants(c *fiber.Ctx) error {
	claims := currentUser(c)

	query := database.GetDB().Model(&model.Tenant{}).Where("user_id = ?", claims.UserID)
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", like, like)
	}

	var tenants []model.Tenant
	if err := query.Order("created_at DESC").Find(&tenants).Error; err != nil {
		return respondDBError(c, "Could not fetch tenants", err)
	}

	return c.JSON(tenants)
}

func GetTenant(c *fiber.Ctx) error {
	claims := currentUser(c)

	var tenant model.Tenant
	if err := database.GetDB().Where("user_id = ?", claims.UserID).
		Preload("Documents").
		First(&tenant, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Tenant not found", err)
	}

	var applications []model.Application
	database.GetDB().Where("tenant_id = ?", tenant.ID).
		Preload("Property").Order("created_at DESC").Find(&applications)

	var leases []model.Lease
	database.GetDB().Where("tenant_id = ?", tenant.ID).
		Preload("Property").Order("created_at DESC").Find(&leases)

	return c.JSON(fiber.Map{
		"tenant":       tenant,
		"applications": applications,
		"leases":       leases,
	})
}

func CreateTenant(c *fiber.Ctx) error {
	claims := currentUser(c)

	input := new(TenantInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}
	if input.FullName == "" || input.Email == "" {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Full name and email are required"))
	}

	var existing model.Tenant
	if err := database.GetDB().
		Where("user_id = ? AND email = ?", claims.UserID, input.Email).
		First(&existing).Error; err == nil {
		return apperror.Respond(c, apperror.New(apperror.CodeConflict, "A tenant with this email already exists"))
	}

	tenant := model.Tenant{
		UserID:                claims.UserID,
		FullName:              input.FullName,
		Email:                 input.Email,
		Phone:                 input.Phone,
		EmergencyContactName:  input.EmergencyContactName,
		EmergencyContactPhone: input.EmergencyContactPhone,
		CurrentAddress:        input.CurrentAddress,
		Notes:                 input.Notes,
	}

	if err := database.GetDB().Create(&tenant).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not create tenant", err))
	}

	return c.Status(fiber.StatusCreated).JSON(tenant)
}

func UpdateTenant(c *fiber.Ctx) error {
	claims := currentUser(c)

	var tenant model.Tenant
	if err := database.GetDB().Where("user_id = ?", claims.UserID).
		First(&tenant, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Tenant not found", err)
	}

	input := new(TenantInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	updates := map[string]interface{}{
		"full_name":               input.FullName,
		"email":                   input.Email,
		"phone":                   input.Phone,
		"emergency_contact_name":  input.EmergencyContactName,
		"emergency_contact_phone": input.EmergencyContactPhone,
		"current_address":         input.CurrentAddress,
		"notes":                   input.Notes,
	}
	if err := database.GetDB().Model(&tenant).Updates(updates).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not update tenant", err))
	}

	return c.JSON(tenant)
}

func DeleteTenant(c *fiber.Ctx) error {
	claims := currentUser(c)

	var tenant model.Tenant
	if err := database.GetDB().Where("user_id = ?", claims.UserID).
		First(&tenant, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Tenant not found", err)
	}

	var activeLeases int64
	database.GetDB().Model(&model.Lease{}).
		Where("tenant_id = ? AND is_active = ?", tenant.ID, true).
		Count(&activeLeases)
	if activeLeases > 0 {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Tenants with active leases cannot be deleted"))
	}

	if err := database.GetDB().Delete(&tenant).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not delete tenant", err))
	}

	return c.JSON(fiber.Map{"message": "Tenant deleted successfully"})
}

func UploadTenantDocument(c *fiber.Ctx) error {
	claims := currentUser(c)

	var tenant model.Tenant
	if err := database.GetDB().Where("user_id = ?", claims.UserID).
		First(&tenant, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Tenant not found", err)
	}

	file, err := c.FormFile("document")
	if err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Document file is required"))
	}

	documentType := c.FormValue("document_type")
	if documentType == "" {
		documentType = "other"
	}

	url, err := storage.UploadTenantDocument(file, tenant.ID, documentType)
	if err != nil {
		log.Printf("tenant document upload failed: %v", err)
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, err.Error()))
	}

	doc := model.TenantDocument{
		TenantID:     tenant.ID,
		DocumentType: documentType,
		FileURL:      url,
		Notes:        c.FormValue("notes"),
	}
	if err := database.GetDB().Create(&doc).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not save document", err))
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}
