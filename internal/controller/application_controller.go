package controller

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/database"
	"tink_backend/pkg/email"
	"tink_backend/pkg/metrics"
	"tink_backend/pkg/workflow"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ApplicationView is an application joined with its derived status. The
// outer Status shadows the stored one: clients always see the lease-derived
// status and never need to reconcile the two.
type ApplicationView struct {
	model.Application
	Status       model.ApplicationStatus `json:"status"`
	Lease        *model.Lease            `json:"lease,omitempty"`
	LeaseID      *uint                   `json:"lease_id,omitempty"`
	TenantName   string                  `json:"tenant_name"`
	PropertyName string                  `json:"property_name"`
	RoomName     string                  `json:"room_name,omitempty"`
}

func newApplicationView(app model.Application, leases []model.Lease) ApplicationView {
	derived := workflow.EffectiveStatus(app, leases)

	view := ApplicationView{
		Application:  app,
		Status:       derived.Status,
		Lease:        derived.Lease,
		LeaseID:      derived.LeaseID,
		TenantName:   app.Tenant.FullName,
		PropertyName: app.Property.Name,
	}
	if app.Room != nil {
		view.RoomName = app.Room.Name
	}
	if derived.Status == model.ApplicationStatusPending {
		view.DaysPending = int(time.Since(app.CreatedAt).Hours() / 24)
	}
	return view
}

// ownedApplication loads an application and verifies the property behind it
// belongs to the caller. Managers skip the ownership check.
func ownedApplication(c *fiber.Ctx) (*model.Application, error) {
	claims := currentUser(c)

	var app model.Application
	if err := database.GetDB().
		Preload("Tenant").Preload("Property").Preload("Room").Preload("Viewings").
		First(&app, "id = ?", c.Params("id")).Error; err != nil {
		return nil, respondDBError(c, "Application not found", err)
	}

	if claims.Role != "manager" && app.Property.UserID != claims.UserID {
		return nil, apperror.Respond(c, apperror.New(apperror.CodeNotFound, "Application not found"))
	}

	return &app, nil
}

// relatedLeases fetches every lease that could influence the derived status
// of the given application.
func relatedLeases(app *model.Application) ([]model.Lease, error) {
	var leases []model.Lease
	err := database.GetDB().
		Where("application_id = ?", app.ID).
		Or("tenant_id = ? AND property_id = ?", app.TenantID, app.PropertyID).
		Find(&leases).Error
	return leases, err
}

func denyTransition(c *fiber.Ctx, action workflow.Action, reason string) error {
	metrics.TransitionsBlocked.WithLabelValues(string(action)).Inc()
	return apperror.Respond(c, apperror.New(apperror.CodeTransitionBlocked, reason))
}

func derivedStatus(app *model.Application) (model.ApplicationStatus, error) {
	leases, err := relatedLeases(app)
	if err != nil {
		return "", err
	}
	return workflow.EffectiveStatus(*app, leases).Status, nil
}

func GetApplications(c *fiber.Ctx) error {
	claims := currentUser(c)

	query := database.GetDB().Model(&model.Application{}).
		Joins("JOIN properties ON properties.id = applications.property_id").
		Preload("Tenant").Preload("Property").Preload("Room").Preload("Viewings")
	if claims.Role != "manager" {
		query = query.Where("properties.user_id = ?", claims.UserID)
	}
	if propertyID := c.Query("property"); propertyID != "" {
		query = query.Where("applications.property_id = ?", propertyID)
	}

	var apps []model.Application
	if err := query.Order("applications.created_at DESC").Find(&apps).Error; err != nil {
		return respondDBError(c, "Could not fetch applications", err)
	}

	leaseQuery := database.GetDB().Model(&model.Lease{}).
		Joins("JOIN properties ON properties.id = leases.property_id")
	if claims.Role != "manager" {
		leaseQuery = leaseQuery.Where("properties.user_id = ?", claims.UserID)
	}
	var leases []model.Lease
	if err := leaseQuery.Find(&leases).Error; err != nil {
		return respondDBError(c, "Could not fetch leases", err)
	}

	statusFilter := c.Query("status")
	views := make([]ApplicationView, 0, len(apps))
	for _, app := range apps {
		view := newApplicationView(app, leases)
		// status filters match the derived status, not the stored one
		if statusFilter != "" && string(view.Status) != statusFilter {
			continue
		}
		views = append(views, view)
	}

	return c.JSON(views)
}

func GetApplication(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	leases, err := relatedLeases(app)
	if err != nil {
		return respondDBError(c, "Could not fetch leases", err)
	}

	return c.JSON(newApplicationView(*app, leases))
}

type ApplicationInput struct {
	TenantID          uint    `json:"tenant_id"`
	PropertyID        uint    `json:"property_id"`
	RoomID            *uint   `json:"room_id"`
	DesiredMoveInDate string  `json:"desired_move_in_date"`
	RentBudget        float64 `json:"rent_budget"`
	Message           string  `json:"message"`
}

func CreateApplication(c *fiber.Ctx) error {
	claims := currentUser(c)

	input := new(ApplicationInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

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

	app := model.Application{
		TenantID:   tenant.ID,
		PropertyID: property.ID,
		RoomID:     input.RoomID,
		Status:     model.ApplicationStatusPending,
		RentBudget: input.RentBudget,
		Message:    input.Message,
	}
	if input.DesiredMoveInDate != "" {
		moveIn, err := parseDate(input.DesiredMoveInDate)
		if err != nil {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid desired_move_in_date, expected YYYY-MM-DD"))
		}
		app.DesiredMoveInDate = &moveIn
	}

	if err := database.GetDB().Create(&app).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not create application", err))
	}

	return c.Status(fiber.StatusCreated).JSON(app)
}

type ApplicationUpdateInput struct {
	DesiredMoveInDate string   `json:"desired_move_in_date"`
	RentBudget        *float64 `json:"rent_budget"`
	Message           *string  `json:"message"`
	DecisionNotes     *string  `json:"decision_notes"`
}

func UpdateApplication(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	input := new(ApplicationUpdateInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	updates := map[string]interface{}{}
	if input.DesiredMoveInDate != "" {
		moveIn, err := parseDate(input.DesiredMoveInDate)
		if err != nil {
			return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid desired_move_in_date, expected YYYY-MM-DD"))
		}
		updates["desired_move_in_date"] = moveIn
	}
	if input.RentBudget != nil {
		updates["rent_budget"] = *input.RentBudget
	}
	if input.Message != nil {
		updates["message"] = *input.Message
	}
	if input.DecisionNotes != nil {
		updates["decision_notes"] = *input.DecisionNotes
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(app).Updates(updates).Error; err != nil {
			return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not update application", err))
		}
	}

	return c.JSON(app)
}

func DeleteApplication(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	var linkedLeases int64
	database.GetDB().Model(&model.Lease{}).
		Where("application_id = ?", app.ID).Count(&linkedLeases)
	if linkedLeases > 0 {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Applications with linked leases cannot be deleted"))
	}

	if err := database.GetDB().Select("Viewings").Delete(app).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not delete application", err))
	}

	return c.JSON(fiber.Map{"message": "Application deleted successfully"})
}

// QualifyApplication is the one-click shortcut on the pipeline board. On a
// pending application it records an approval; on a rejected one it acts as
// an undo back to pending.
func QualifyApplication(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	status, err := derivedStatus(app)
	if err != nil {
		return respondDBError(c, "Could not fetch leases", err)
	}

	if decision := workflow.Gate(workflow.ActionQualify, status); !decision.Allowed {
		return denyTransition(c, workflow.ActionQualify, decision.Reason)
	}

	if workflow.QualifyIsUndo(status) {
		updates := map[string]interface{}{
			"status":           model.ApplicationStatusPending,
			"rejection_reason": "",
		}
		if err := database.GetDB().Model(app).Updates(updates).Error; err != nil {
			return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not restore application", err))
		}
		metrics.ApplicationDecisions.WithLabelValues("undo").Inc()
		return c.JSON(fiber.Map{"message": "Application restored to pending", "application": app})
	}

	if err := database.GetDB().Model(app).
		Update("status", model.ApplicationStatusApproved).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not qualify application", err))
	}
	metrics.ApplicationDecisions.WithLabelValues("approve").Inc()

	return c.JSON(fiber.Map{"message": "Application approved", "application": app})
}

type DecisionInput struct {
	Decision        string `json:"decision"`
	DecisionNotes   string `json:"decision_notes"`
	RejectionReason string `json:"rejection_reason"`
	RoomID          *uint  `json:"room_id"`
}

func DecideApplication(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	input := new(DecisionInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	status, err := derivedStatus(app)
	if err != nil {
		return respondDBError(c, "Could not fetch leases", err)
	}

	switch input.Decision {
	case "approve":
		if decision := workflow.Gate(workflow.ActionApprove, status); !decision.Allowed {
			return denyTransition(c, workflow.ActionApprove, decision.Reason)
		}

		updates := map[string]interface{}{
			"decision_notes": input.DecisionNotes,
		}
		// approving a post-viewing application moves it to processing;
		// the lease itself is generated in a separate step
		if status == model.ApplicationStatusPending {
			updates["status"] = model.ApplicationStatusApproved
		} else {
			updates["status"] = model.ApplicationStatusProcessing
		}

		if input.RoomID != nil {
			var room model.Room
			if err := database.GetDB().Where("property_id = ?", app.PropertyID).
				First(&room, "id = ?", *input.RoomID).Error; err != nil {
				return respondDBError(c, "Room not found", err)
			}
			if !room.IsAssignable() {
				return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Room is not available for assignment"))
			}
			updates["room_id"] = room.ID
		}

		if err := database.GetDB().Model(app).Updates(updates).Error; err != nil {
			return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not approve application", err))
		}
		metrics.ApplicationDecisions.WithLabelValues("approve").Inc()
		return c.JSON(fiber.Map{"message": "Application approved", "application": app})

	case "reject":
		if decision := workflow.Gate(workflow.ActionReject, status); !decision.Allowed {
			return denyTransition(c, workflow.ActionReject, decision.Reason)
		}

		updates := map[string]interface{}{
			"status":           model.ApplicationStatusRejected,
			"rejection_reason": input.RejectionReason,
			"decision_notes":   input.DecisionNotes,
		}
		if err := database.GetDB().Model(app).Updates(updates).Error; err != nil {
			return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not reject application", err))
		}
		metrics.ApplicationDecisions.WithLabelValues("reject").Inc()
		return c.JSON(fiber.Map{"message": "Application rejected", "application": app})

	default:
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Decision must be approve or reject"))
	}
}

// QuickApproveApplication approves in one click with auto-selected room and
// default lease terms. The plan is computed before anything is written, so a
// fully occupied property rejects without side effects.
func QuickApproveApplication(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	status, err := derivedStatus(app)
	if err != nil {
		return respondDBError(c, "Could not fetch leases", err)
	}

	if decision := workflow.Gate(workflow.ActionApprove, status); !decision.Allowed {
		return denyTransition(c, workflow.ActionApprove, decision.Reason)
	}

	var rooms []model.Room
	if app.Property.RentType == model.RentPerRoom {
		if err := database.GetDB().Where("property_id = ?", app.PropertyID).
			Find(&rooms).Error; err != nil {
			return respondDBError(c, "Could not fetch rooms", err)
		}
	}

	plan, planErr := workflow.PlanQuickApprove(*app, app.Property, rooms, time.Now())
	if planErr != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, planErr.Error()))
	}

	updates := map[string]interface{}{
		"status": model.ApplicationStatusApproved,
		"decision_notes": fmt.Sprintf("Quick approved: %s at %.2f/month, deposit %.2f",
			plan.RoomName, plan.MonthlyRent, plan.SecurityDeposit),
	}
	if plan.RoomID != nil {
		updates["room_id"] = *plan.RoomID
	}
	if err := database.GetDB().Model(app).Updates(updates).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not approve application", err))
	}
	metrics.ApplicationDecisions.WithLabelValues("approve").Inc()

	return c.JSON(fiber.Map{
		"message": "Application approved",
		"plan": fiber.Map{
			"room_id":          plan.RoomID,
			"room_name":        plan.RoomName,
			"monthly_rent":     plan.MonthlyRent,
			"security_deposit": plan.SecurityDeposit,
			"start_date":       plan.StartDate.Format(dateLayout),
			"end_date":         plan.EndDate.Format(dateLayout),
		},
	})
}

type AssignRoomInput struct {
	RoomID uint `json:"room_id"`
}

func AssignRoom(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	input := new(AssignRoomInput)
	if err := c.BodyParser(input); err != nil || input.RoomID == 0 {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "room_id is required"))
	}

	status, err := derivedStatus(app)
	if err != nil {
		return respondDBError(c, "Could not fetch leases", err)
	}

	if decision := workflow.Gate(workflow.ActionAssignRoom, status); !decision.Allowed {
		return denyTransition(c, workflow.ActionAssignRoom, decision.Reason)
	}

	var room model.Room
	if err := database.GetDB().Where("property_id = ?", app.PropertyID).
		First(&room, "id = ?", input.RoomID).Error; err != nil {
		return respondDBError(c, "Room not found", err)
	}
	if !room.IsAssignable() {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Room is not available for assignment"))
	}

	updates := map[string]interface{}{
		"room_id": room.ID,
		"status":  model.ApplicationStatusRoomAssigned,
	}
	if err := database.GetDB().Model(app).Updates(updates).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not assign room", err))
	}

	return c.JSON(fiber.Map{"message": "Room assigned", "application": app})
}

type ViewingInput struct {
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
	Notes         string `json:"notes"`
}

func ScheduleViewing(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	input := new(ViewingInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}
	if input.ScheduledDate == "" {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "scheduled_date is required"))
	}
	scheduledDate, err := parseDate(input.ScheduledDate)
	if err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid scheduled_date, expected YYYY-MM-DD"))
	}

	status, err := derivedStatus(app)
	if err != nil {
		return respondDBError(c, "Could not fetch leases", err)
	}

	if decision := workflow.Gate(workflow.ActionScheduleViewing, status); !decision.Allowed {
		return denyTransition(c, workflow.ActionScheduleViewing, decision.Reason)
	}

	viewing := model.Viewing{
		ApplicationID: app.ID,
		ScheduledDate: scheduledDate,
		ScheduledTime: input.ScheduledTime,
		ContactPerson: input.ContactPerson,
		ContactPhone:  input.ContactPhone,
		Notes:         input.Notes,
		Status:        model.ViewingStatusScheduled,
	}

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&viewing).Error; err != nil {
			return err
		}
		return tx.Model(app).Update("status", model.ApplicationStatusViewingScheduled).Error
	})
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not schedule viewing", err))
	}

	if email.GlobalEmailService != nil && app.Tenant.Email != "" {
		go func() {
			if err := email.GlobalEmailService.SendViewingScheduledEmail(app.Tenant.Email, email.ViewingScheduledData{
				TenantName:    app.Tenant.FullName,
				PropertyName:  app.Property.Name,
				ScheduledDate: scheduledDate.Format(dateLayout),
				ScheduledTime: input.ScheduledTime,
				ContactPerson: input.ContactPerson,
				ContactPhone:  input.ContactPhone,
			}); err != nil {
				log.Printf("viewing scheduled email failed: %v", err)
			}
		}()
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Viewing scheduled", "viewing": viewing})
}

type ViewingCompletionInput struct {
	Outcome        string `json:"outcome"`
	TenantFeedback string `json:"tenant_feedback"`
	LandlordNotes  string `json:"landlord_notes"`
	NextAction     string `json:"next_action"`
}

func CompleteViewing(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	input := new(ViewingCompletionInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	status, err := derivedStatus(app)
	if err != nil {
		return respondDBError(c, "Could not fetch leases", err)
	}

	if decision := workflow.Gate(workflow.ActionCompleteViewing, status); !decision.Allowed {
		return denyTransition(c, workflow.ActionCompleteViewing, decision.Reason)
	}

	var viewing model.Viewing
	if err := database.GetDB().
		Where("application_id = ? AND status = ?", app.ID, model.ViewingStatusScheduled).
		Order("id DESC").First(&viewing).Error; err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "No active viewing found for this application"))
	}

	outcome := model.ViewingOutcome(input.Outcome)
	switch outcome {
	case model.ViewingOutcomePositive, model.ViewingOutcomeNegative, model.ViewingOutcomeNeutral:
	case "":
		outcome = model.ViewingOutcomeNeutral
	default:
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid outcome"))
	}

	feedback, _ := json.Marshal(map[string]string{
		"tenant_feedback": input.TenantFeedback,
		"landlord_notes":  input.LandlordNotes,
		"next_action":     input.NextAction,
	})

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":   model.ViewingStatusCompleted,
			"outcome":  outcome,
			"feedback": datatypes.JSON(feedback),
		}
		if err := tx.Model(&viewing).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(app).Update("status", model.ApplicationStatusViewingCompleted).Error
	})
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not complete viewing", err))
	}

	return c.JSON(fiber.Map{"message": "Viewing completed", "viewing": viewing})
}

func SkipViewing(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	status, err := derivedStatus(app)
	if err != nil {
		return respondDBError(c, "Could not fetch leases", err)
	}

	if decision := workflow.Gate(workflow.ActionSkipViewing, status); !decision.Allowed {
		return denyTransition(c, workflow.ActionSkipViewing, decision.Reason)
	}

	if err := database.GetDB().Model(app).
		Update("status", model.ApplicationStatusViewingCompleted).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not skip viewing", err))
	}

	return c.JSON(fiber.Map{"message": "Viewing skipped", "application": app})
}

// GetViewings lists scheduled viewings across the caller's properties, the
// calendar view behind the pipeline board.
func GetViewings(c *fiber.Ctx) error {
	claims := currentUser(c)

	query := database.GetDB().Model(&model.Viewing{}).
		Joins("JOIN applications ON applications.id = viewings.application_id").
		Joins("JOIN properties ON properties.id = applications.property_id").
		Preload("Application").Preload("Application.Tenant").Preload("Application.Property")
	if claims.Role != "manager" {
		query = query.Where("properties.user_id = ?", claims.UserID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("viewings.status = ?", status)
	}

	var viewings []model.Viewing
	if err := query.Order("viewings.scheduled_date ASC").Find(&viewings).Error; err != nil {
		return respondDBError(c, "Could not fetch viewings", err)
	}

	return c.JSON(viewings)
}

func RescheduleViewing(c *fiber.Ctx) error {
	app, err := ownedApplication(c)
	if app == nil {
		return err
	}

	input := new(ViewingInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}
	if input.ScheduledDate == "" {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "scheduled_date is required"))
	}
	scheduledDate, err := parseDate(input.ScheduledDate)
	if err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid scheduled_date, expected YYYY-MM-DD"))
	}

	var viewing model.Viewing
	if err := database.GetDB().
		Where("application_id = ? AND status = ?", app.ID, model.ViewingStatusScheduled).
		Order("id DESC").First(&viewing).Error; err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "No active viewing found for this application"))
	}

	updates := map[string]interface{}{
		"scheduled_date": scheduledDate,
		"scheduled_time": input.ScheduledTime,
	}
	if err := database.GetDB().Model(&viewing).Updates(updates).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not reschedule viewing", err))
	}

	return c.JSON(fiber.Map{"message": "Viewing rescheduled", "viewing": viewing})
}
