package controller

import (
	"log"
	"regexp"

	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/database"
	"tink_backend/pkg/email"

	"github.com/gofiber/fiber/v2"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// listingView strips landlord-internal fields from a property before it is
// shown on the public site.
func listingView(p model.Property) fiber.Map {
	return fiber.Map{
		"id":            p.ID,
		"name":          p.Name,
		"slug":          p.Slug,
		"property_type": p.PropertyType,
		"rent_type":     p.RentType,
		"monthly_rent":  p.MonthlyRent,
		"description":   p.Description,
		"city":          p.City,
		"state":         p.State,
		"total_rooms":   p.TotalRooms,
		"vacant_rooms":  p.VacantRooms,
		"images":        p.Images,
	}
}

func GetPublicListings(c *fiber.Ctx) error {
	query := database.GetDB().Where("is_listed = ?", true).Preload("Images")
	if city := c.Query("city"); city != "" {
		query = query.Where("city ILIKE ?", city)
	}

	var properties []model.Property
	if err := query.Order("created_at DESC").Find(&properties).Error; err != nil {
		return respondDBError(c, "Could not fetch listings", err)
	}

	listings := make([]fiber.Map, 0, len(properties))
	for _, p := range properties {
		listings = append(listings, listingView(p))
	}

	return c.JSON(listings)
}

func GetPublicListingBySlug(c *fiber.Ctx) error {
	var property model.Property
	if err := database.GetDB().Where("is_listed = ?", true).
		Preload("Images").
		First(&property, "slug = ?", c.Params("slug")).Error; err != nil {
		return respondDBError(c, "Listing not found", err)
	}

	return c.JSON(listingView(property))
}

type PublicApplicationInput struct {
	FullName          string  `json:"full_name" validate:"required"`
	Email             string  `json:"email" validate:"required,email"`
	Phone             string  `json:"phone"`
	DesiredMoveInDate string  `json:"desired_move_in_date"`
	RentBudget        float64 `json:"rent_budget"`
	Message           string  `json:"message"`
}

// SubmitPublicApplication is the unauthenticated application form on a
// listing page. The applicant is matched to an existing tenant record by
// email or a new one is created.
func SubmitPublicApplication(c *fiber.Ctx) error {
	var property model.Property
	if err := database.GetDB().Where("is_listed = ?", true).
		First(&property, "id = ?", c.Params("id")).Error; err != nil {
		return respondDBError(c, "Listing not found", err)
	}

	input := new(PublicApplicationInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}
	if input.FullName == "" || input.Email == "" {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Full name and email are required"))
	}
	if !emailPattern.MatchString(input.Email) {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid email address"))
	}
	if input.RentBudget < 0 {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Rent budget cannot be negative"))
	}

	var tenant model.Tenant
	if err := database.GetDB().
		Where("user_id = ? AND email = ?", property.UserID, input.Email).
		First(&tenant).Error; err != nil {
		tenant = model.Tenant{
			UserID:   property.UserID,
			FullName: input.FullName,
			Email:    input.Email,
			Phone:    input.Phone,
		}
		if err := database.GetDB().Create(&tenant).Error; err != nil {
			return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not create tenant", err))
		}
	}

	var openApplications int64
	database.GetDB().Model(&model.Application{}).
		Where("tenant_id = ? AND property_id = ? AND status NOT IN ?",
			tenant.ID, property.ID,
			[]model.ApplicationStatus{model.ApplicationStatusRejected}).
		Count(&openApplications)
	if openApplications > 0 {
		return apperror.Respond(c, apperror.New(apperror.CodeConflict, "You already have an open application for this property"))
	}

	app := model.Application{
		TenantID:   tenant.ID,
		PropertyID: property.ID,
		Status:     model.ApplicationStatusPending,
		RentBudget: input.RentBudget,
		Message:    input.Message,
	}
	moveInText := ""
	if input.DesiredMoveInDate != "" {
		moveIn, err := parseDate(input.DesiredMoveInDate)
		if err != nil {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid desired_move_in_date, expected YYYY-MM-DD"))
		}
		app.DesiredMoveInDate = &moveIn
		moveInText = moveIn.Format(dateLayout)
	}

	if err := database.GetDB().Create(&app).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not submit application", err))
	}

	if email.GlobalEmailService != nil {
		go func() {
			if err := email.GlobalEmailService.SendApplicationReceivedEmail(tenant.Email, email.ApplicationReceivedData{
				TenantName:   tenant.FullName,
				PropertyName: property.Name,
				MoveInDate:   moveInText,
			}); err != nil {
				log.Printf("application received email failed: %v", err)
			}
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Application submitted successfully",
		"application": app,
	})
}
