package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/cache"
	"tink_backend/pkg/database"
	"tink_backend/pkg/email"
	"tink_backend/pkg/metrics"
	"tink_backend/pkg/pdf"
	"tink_backend/pkg/workflow"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func ownedLease(c *fiber.Ctx) (*model.Lease, error) {
	claims := currentUser(c)

	var lease model.Lease
	if err := database.GetDB().
		Preload("Tenant").Preload("Property").Preload("Room").Preload("Application").
		First(&lease, "id = ?", c.Params("id")).Error; err != nil {
		return nil, respondDBError(c, "Lease not found", err)
	}

	if claims.Role != "manager" && lease.Property.UserID != claims.UserID {
		return nil, apperror.Respond(c, apperror.New(apperror.CodeNotFound, "Lease not found"))
	}

	return &lease, nil
}

func GetLeases(c *fiber.Ctx) error {
	claims := currentUser(c)

	query := database.GetDB().Model(&model.Lease{}).
		Joins("JOIN properties ON properties.id = leases.property_id").
		Preload("Tenant").Preload("Property").Preload("Room")
	if claims.Role != "manager" {
		query = query.Where("properties.user_id = ?", claims.UserID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("leases.status = ?", status)
	}
	if propertyID := c.Query("property"); propertyID != "" {
		query = query.Where("leases.property_id = ?", propertyID)
	}

	var leases []model.Lease
	if err := query.Order("leases.created_at DESC").Find(&leases).Error; err != nil {
		return respondDBError(c, "Could not fetch leases", err)
	}

	return c.JSON(leases)
}

func GetLease(c *fiber.Ctx) error {
	lease, err := ownedLease(c)
	if lease == nil {
		return err
	}
	return c.JSON(lease)
}

type LeaseInput struct {
	ApplicationID   *uint    `json:"application_id"`
	TenantID        uint     `json:"tenant_id"`
	PropertyID      uint     `json:"property_id"`
	RoomID          *uint    `json:"room_id"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	MonthlyRent     float64  `json:"monthly_rent"`
	SecurityDeposit *float64 `json:"security_deposit"`
	DecisionNotes   string   `json:"decision_notes"`
}

// CreateLease generates a draft lease, either from an application (the
// normal path, guarded by the transition gate) or standalone for tenants
// brought in outside the pipeline.
func CreateLease(c *fiber.Ctx) error {
	claims := currentUser(c)

	input := new(LeaseInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	startDate, err := parseDate(input.StartDate)
	if err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid start_date, expected YYYY-MM-DD"))
	}
	var endDate time.Time
	if input.EndDate == "" {
		endDate = workflow.AddLeaseYear(startDate)
	} else {
		endDate, err = parseDate(input.EndDate)
		if err != nil {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid end_date, expected YYYY-MM-DD"))
		}
	}
	if !endDate.After(startDate) {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Lease end date must be after the start date"))
	}
	if input.MonthlyRent <= 0 {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Monthly rent must be greater than zero"))
	}
	deposit := input.MonthlyRent * workflow.DepositMultiplier
	if input.SecurityDeposit != nil {
		if *input.SecurityDeposit < 0 {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Security deposit cannot be negative"))
		}
		deposit = *input.SecurityDeposit
	}

	lease := model.Lease{
		StartDate:       startDate,
		EndDate:         endDate,
		MonthlyRent:     input.MonthlyRent,
		SecurityDeposit: deposit,
		Status:          model.LeaseStatusDraft,
		DecisionNotes:   input.DecisionNotes,
		CreatedByID:     claims.UserID,
	}

	var app *model.Application
	if input.ApplicationID != nil {
		app = new(model.Application)
		if err := database.GetDB().
			Preload("Tenant").Preload("Property").
			First(app, "id = ?", *input.ApplicationID).Error; err != nil {
			return respondDBError(c, "Application not found", err)
		}
		if claims.Role != "manager" && app.Property.UserID != claims.UserID {
			return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "Application not found"))
		}

		status, err := derivedStatus(app)
		if err != nil {
			return respondDBError(c, "Could not fetch leases", err)
		}
		if decision := workflow.Gate(workflow.ActionGenerateLease, status); !decision.Allowed {
			return denyTransition(c, workflow.ActionGenerateLease, decision.Reason)
		}

		lease.ApplicationID = &app.ID
		lease.TenantID = app.TenantID
		lease.PropertyID = app.PropertyID
		lease.RoomID = app.RoomID
		if input.RoomID != nil {
			lease.RoomID = input.RoomID
		}
	} else {
		var property model.Property
		if err := database.GetDB().Scopes(ownedPropertyScope(claims)).
			First(&property, "id = ?", input.PropertyID).Error; err != nil {
			return respondDBError(c, "Property not found", err)
		}
		var tenant model.Tenant
		if err := database.GetDB().Where("user_id = ?", property.UserID).
			First(&tenant, "id = ?", input.TenantID).Error; err != nil {
			return respondDBError(c, "Tenant not found", err)
		}
		lease.TenantID = tenant.ID
		lease.PropertyID = property.ID
		lease.RoomID = input.RoomID
	}

	txErr := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lease).Error; err != nil {
			return err
		}
		if app != nil {
			return tx.Model(app).Update("status", model.ApplicationStatusLeaseCreated).Error
		}
		return nil
	})
	if txErr != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not create lease", txErr))
	}

	return c.Status(fiber.StatusCreated).JSON(lease)
}

type LeaseUpdateInput struct {
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	MonthlyRent     *float64 `json:"monthly_rent"`
	SecurityDeposit *float64 `json:"security_deposit"`
	DecisionNotes   *string  `json:"decision_notes"`
}

func UpdateLease(c *fiber.Ctx) error {
	lease, err := ownedLease(c)
	if lease == nil {
		return err
	}

	if lease.Status != model.LeaseStatusDraft && lease.Status != model.LeaseStatusSentToTenant {
		return apperror.Respond(c, apperror.New(apperror.CodeTransitionBlocked, "Only draft leases can be edited"))
	}

	input := new(LeaseUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	startDate := lease.StartDate
	endDate := lease.EndDate
	updates := map[string]interface{}{}
	if input.StartDate != "" {
		startDate, err = parseDate(input.StartDate)
		if err != nil {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid start_date, expected YYYY-MM-DD"))
		}
		updates["start_date"] = startDate
	}
	if input.EndDate != "" {
		endDate, err = parseDate(input.EndDate)
		if err != nil {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid end_date, expected YYYY-MM-DD"))
		}
		updates["end_date"] = endDate
	}
	if !endDate.After(startDate) {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Lease end date must be after the start date"))
	}
	if input.MonthlyRent != nil {
		if *input.MonthlyRent <= 0 {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Monthly rent must be greater than zero"))
		}
		updates["monthly_rent"] = *input.MonthlyRent
	}
	if input.SecurityDeposit != nil {
		if *input.SecurityDeposit < 0 {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Security deposit cannot be negative"))
		}
		updates["security_deposit"] = *input.SecurityDeposit
	}
	if input.DecisionNotes != nil {
		updates["decision_notes"] = *input.DecisionNotes
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(lease).Updates(updates).Error; err != nil {
			return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not update lease", err))
		}
	}

	return c.JSON(lease)
}

func DeleteLease(c *fiber.Ctx) error {
	lease, err := ownedLease(c)
	if lease == nil {
		return err
	}

	if lease.Status != model.LeaseStatusDraft {
		return apperror.Respond(c, apperror.New(apperror.CodeTransitionBlocked, "Only draft leases can be deleted"))
	}

	txErr := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(lease).Error; err != nil {
			return err
		}
		// the linked application goes back to the pre-lease stage so a
		// new lease can be generated
		if lease.ApplicationID != nil {
			return tx.Model(&model.Application{}).
				Where("id = ?", *lease.ApplicationID).
				Update("status", model.ApplicationStatusProcessing).Error
		}
		return nil
	})
	if txErr != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not delete lease", txErr))
	}

	return c.JSON(fiber.Map{"message": "Lease deleted successfully"})
}

// gateLease runs a lease handler's precondition through the transition
// gate by mapping the lease status onto the lifecycle stage it implies.
// Statuses outside the stage table (ended) are always denied.
func gateLease(c *fiber.Ctx, lease *model.Lease, action workflow.Action, verb string) error {
	stage, ok := workflow.LeaseStage(lease.Status)
	if !ok {
		return denyTransition(c, action, fmt.Sprintf("Cannot %s lease in %s status.", verb, lease.Status))
	}
	if decision := workflow.Gate(action, stage); !decision.Allowed {
		return denyTransition(c, action, decision.Reason)
	}
	return nil
}

func SendLeaseToTenant(c *fiber.Ctx) error {
	lease, err := ownedLease(c)
	if lease == nil {
		return err
	}

	if err := gateLease(c, lease, workflow.ActionSendToTenant, "send"); err != nil {
		return err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":            model.LeaseStatusSentToTenant,
		"sent_to_tenant_at": now,
	}
	if err := database.GetDB().Model(lease).Updates(updates).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not send lease", err))
	}

	if email.GlobalEmailService != nil && lease.Tenant.Email != "" {
		go func() {
			if err := email.GlobalEmailService.SendLeaseSentEmail(lease.Tenant.Email, email.LeaseSentData{
				TenantName:   lease.Tenant.FullName,
				PropertyName: lease.Property.Name,
				StartDate:    lease.StartDate.Format(dateLayout),
				EndDate:      lease.EndDate.Format(dateLayout),
				MonthlyRent:  lease.MonthlyRent,
				Deposit:      lease.SecurityDeposit,
			}); err != nil {
				log.Printf("lease sent email failed: %v", err)
			}
		}()
	}

	return c.JSON(fiber.Map{"message": "Lease sent to tenant", "lease": lease})
}

func SignLease(c *fiber.Ctx) error {
	lease, err := ownedLease(c)
	if lease == nil {
		return err
	}

	if lease.Status != model.LeaseStatusSentToTenant && lease.Status != model.LeaseStatusDraft {
		return apperror.Respond(c, apperror.Newf(apperror.CodeTransitionBlocked, "Cannot sign lease in %s status.", lease.Status))
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":    model.LeaseStatusSigned,
		"signed_at": now,
	}
	if err := database.GetDB().Model(lease).Updates(updates).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not sign lease", err))
	}

	return c.JSON(fiber.Map{"message": "Lease signed", "lease": lease})
}

// ActivateLease marks the lease active and the unit occupied. Move-in is the
// point where vacancy counters actually change.
func ActivateLease(c *fiber.Ctx) error {
	lease, err := ownedLease(c)
	if lease == nil {
		return err
	}

	if err := gateLease(c, lease, workflow.ActionActivateLease, "activate"); err != nil {
		return err
	}

	now := time.Now()
	txErr := database.GetDB().Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":       model.LeaseStatusActive,
			"is_active":    true,
			"activated_at": now,
		}
		if err := tx.Model(lease).Updates(updates).Error; err != nil {
			return err
		}

		if lease.RoomID != nil {
			if err := tx.Model(&model.Room{}).Where("id = ?", *lease.RoomID).
				Updates(map[string]interface{}{
					"status":    model.RoomStatusOccupied,
					"is_vacant": false,
				}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&model.Room{}).Where("property_id = ?", lease.PropertyID).
				Updates(map[string]interface{}{
					"status":    model.RoomStatusOccupied,
					"is_vacant": false,
				}).Error; err != nil {
				return err
			}
		}
		if err := lease.Property.RecountVacancy(tx); err != nil {
			return err
		}

		if lease.ApplicationID != nil {
			return tx.Model(&model.Application{}).
				Where("id = ?", *lease.ApplicationID).
				Update("status", model.ApplicationStatusMovedIn).Error
		}
		return nil
	})
	if txErr != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not activate lease", txErr))
	}
	cache.Invalidate(c.Context(), fmt.Sprintf(cache.DashboardStatsKeyFmt, lease.Property.UserID))

	return c.JSON(fiber.Map{"message": "Lease activated", "lease": lease})
}

// MoveOutPreview computes the financial impact of a move-out date without
// changing anything.
func MoveOutPreview(c *fiber.Ctx) error {
	lease, err := ownedLease(c)
	if lease == nil {
		return err
	}

	moveOutDate, err := parseDate(c.Query("move_out_date"))
	if err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid move_out_date, expected YYYY-MM-DD"))
	}

	impact := workflow.CalculateMoveOutImpact(lease.MonthlyRent, lease.EndDate, moveOutDate)
	return c.JSON(impact)
}

type MoveOutInput struct {
	MoveOutDate      string  `json:"move_out_date"`
	MoveOutCondition string  `json:"move_out_condition"`
	CleaningCharges  float64 `json:"cleaning_charges"`
	DamageCharges    float64 `json:"damage_charges"`
	DepositReturned  float64 `json:"deposit_returned"`
}

func ProcessMoveOut(c *fiber.Ctx) error {
	lease, err := ownedLease(c)
	if lease == nil {
		return err
	}

	if err := gateLease(c, lease, workflow.ActionMoveOut, "process move-out for"); err != nil {
		return err
	}

	input := new(MoveOutInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}
	moveOutDate, err := parseDate(input.MoveOutDate)
	if err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid move_out_date, expected YYYY-MM-DD"))
	}
	if input.CleaningCharges < 0 || input.DamageCharges < 0 || input.DepositReturned < 0 {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Charges cannot be negative"))
	}

	impact := workflow.CalculateMoveOutImpact(lease.MonthlyRent, lease.EndDate, moveOutDate)

	record, _ := json.Marshal(model.MoveOutRecord{
		MoveOutDate:      moveOutDate.Format(dateLayout),
		MoveOutCondition: input.MoveOutCondition,
		CleaningCharges:  input.CleaningCharges,
		DamageCharges:    input.DamageCharges,
		DepositReturned:  input.DepositReturned,
		RentForgo:        impact.RentForgo,
	})

	txErr := database.GetDB().Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":           model.LeaseStatusEnded,
			"is_active":        false,
			"move_out_details": datatypes.JSON(record),
		}
		if err := tx.Model(lease).Updates(updates).Error; err != nil {
			return err
		}

		freed := map[string]interface{}{
			"status":    model.RoomStatusAvailable,
			"is_vacant": true,
		}
		if lease.RoomID != nil {
			if err := tx.Model(&model.Room{}).Where("id = ?", *lease.RoomID).
				Updates(freed).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Model(&model.Room{}).Where("property_id = ?", lease.PropertyID).
				Updates(freed).Error; err != nil {
				return err
			}
		}
		return lease.Property.RecountVacancy(tx)
	})
	if txErr != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not process move-out", txErr))
	}
	metrics.MoveOutsProcessed.Inc()
	cache.Invalidate(c.Context(), fmt.Sprintf(cache.DashboardStatsKeyFmt, lease.Property.UserID))

	if email.GlobalEmailService != nil && lease.Tenant.Email != "" {
		go func() {
			if err := email.GlobalEmailService.SendMoveOutConfirmationEmail(lease.Tenant.Email, email.MoveOutConfirmationData{
				TenantName:      lease.Tenant.FullName,
				PropertyName:    lease.Property.Name,
				MoveOutDate:     moveOutDate.Format(dateLayout),
				DepositReturned: input.DepositReturned,
			}); err != nil {
				log.Printf("move-out confirmation email failed: %v", err)
			}
		}()
	}

	return c.JSON(fiber.Map{
		"message": "Move-out processed",
		"lease":   lease,
		"impact":  impact,
	})
}

// DownloadLease renders the lease agreement PDF.
func DownloadLease(c *fiber.Ctx) error {
	lease, err := ownedLease(c)
	if lease == nil {
		return err
	}

	var landlord model.User
	database.GetDB().First(&landlord, lease.Property.UserID)

	doc, err := pdf.GenerateDraftLease(pdf.LeaseDocumentData{
		Lease:        lease,
		Tenant:       &lease.Tenant,
		Property:     &lease.Property,
		Room:         lease.Room,
		LandlordName: landlord.GetFullName(),
	})
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not generate lease document", err))
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="lease-%d.pdf"`, lease.ID))
	return c.Send(doc)
}
