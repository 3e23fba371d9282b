package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tink_backend/internal/middleware"
	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/database"
	"tink_backend/pkg/utils/jwt"
)

// ApplicationLifecycleSuite runs the application pipeline end to end against
// an in-memory database and the real HTTP stack.
type ApplicationLifecycleSuite struct {
	suite.Suite

	app      *fiber.App
	token    string
	landlord model.User
	property model.Property
	tenant   model.Tenant
}

func TestApplicationLifecycleSuite(t *testing.T) {
	suite.Run(t, new(ApplicationLifecycleSuite))
}

func (s *ApplicationLifecycleSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(
		&model.User{},
		&model.Property{},
		&model.PropertyImage{},
		&model.Room{},
		&model.Tenant{},
		&model.TenantDocument{},
		&model.Application{},
		&model.Viewing{},
		&model.Lease{},
		&model.RentPayment{},
	))
	database.SetDB(db)

	s.landlord = model.User{Email: "owner@test.local", Password: "x", Role: model.RoleLandlord, FirstName: "Olga", IsActive: true}
	s.Require().NoError(db.Create(&s.landlord).Error)

	s.token, err = jwt.GenerateToken(s.landlord.ID, s.landlord.Email, string(s.landlord.Role))
	s.Require().NoError(err)

	s.property = model.Property{
		UserID:       s.landlord.ID,
		Name:         "Test House",
		PropertyType: model.PropertyTypeHouse,
		RentType:     model.RentPerRoom,
		AddressLine1: "1 Test Lane",
		City:         "Testville",
		IsListed:     true,
	}
	s.Require().NoError(db.Create(&s.property).Error)

	s.tenant = model.Tenant{UserID: s.landlord.ID, FullName: "Tina Tenant", Email: "tina@test.local"}
	s.Require().NoError(db.Create(&s.tenant).Error)

	s.app = fiber.New(fiber.Config{ErrorHandler: apperror.ErrorHandler})
	protected := s.app.Group("/api", middleware.AuthMiddleware())

	applications := protected.Group("/applications")
	applications.Get("/", GetApplications)
	applications.Get("/:id", GetApplication)
	applications.Post("/:id/qualify", QualifyApplication)
	applications.Post("/:id/decide", DecideApplication)
	applications.Post("/:id/quick-approve", QuickApproveApplication)
	applications.Post("/:id/assign-room", AssignRoom)
	applications.Post("/:id/viewings", ScheduleViewing)
	applications.Put("/:id/viewings/complete", CompleteViewing)
	applications.Post("/:id/viewings/skip", SkipViewing)

	leases := protected.Group("/leases")
	leases.Post("/", CreateLease)
	leases.Post("/:id/send-to-tenant", SendLeaseToTenant)
	leases.Post("/:id/sign", SignLease)
	leases.Post("/:id/activate", ActivateLease)
	leases.Get("/:id/moveout-preview", MoveOutPreview)
	leases.Post("/:id/moveout", ProcessMoveOut)
}

func (s *ApplicationLifecycleSuite) request(method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	var parsed map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func (s *ApplicationLifecycleSuite) createLease(status model.LeaseStatus) *model.Lease {
	lease := model.Lease{
		TenantID:        s.tenant.ID,
		PropertyID:      s.property.ID,
		StartDate:       mustDate("2025-02-01"),
		EndDate:         mustDate("2026-02-01"),
		MonthlyRent:     650,
		SecurityDeposit: 1300,
		Status:          status,
		CreatedByID:     s.landlord.ID,
	}
	s.Require().NoError(database.GetDB().Create(&lease).Error)
	return &lease
}

func (s *ApplicationLifecycleSuite) createApplication(status model.ApplicationStatus) *model.Application {
	app := model.Application{
		TenantID:   s.tenant.ID,
		PropertyID: s.property.ID,
		Status:     status,
		RentBudget: 700,
	}
	s.Require().NoError(database.GetDB().Create(&app).Error)
	return &app
}

func (s *ApplicationLifecycleSuite) createRoom(name string, vacant bool, status model.RoomStatus) *model.Room {
	room := model.Room{
		PropertyID:  s.property.ID,
		Name:        name,
		Status:      status,
		IsVacant:    vacant,
		MonthlyRent: 650,
	}
	s.Require().NoError(database.GetDB().Create(&room).Error)
	s.Require().NoError(s.property.RecountVacancy(database.GetDB()))
	return &room
}

func (s *ApplicationLifecycleSuite) TestQuickApproveWithoutVacantRooms() {
	s.createRoom("Room A", false, model.RoomStatusOccupied)
	s.createRoom("Room B", true, model.RoomStatusMaintenance)
	app := s.createApplication(model.ApplicationStatusPending)

	resp, body := s.request("POST", fmt.Sprintf("/api/applications/%d/quick-approve", app.ID), fiber.Map{})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(body["error"], "no vacant rooms")

	// nothing was persisted
	var stored model.Application
	s.Require().NoError(database.GetDB().First(&stored, app.ID).Error)
	s.Equal(model.ApplicationStatusPending, stored.Status)
	s.Nil(stored.RoomID)
}

func (s *ApplicationLifecycleSuite) TestQuickApprovePicksVacantRoom() {
	s.createRoom("Room A", false, model.RoomStatusOccupied)
	room := s.createRoom("Room B", true, model.RoomStatusAvailable)
	app := s.createApplication(model.ApplicationStatusPending)

	resp, body := s.request("POST", fmt.Sprintf("/api/applications/%d/quick-approve", app.ID), fiber.Map{})
	s.Equal(http.StatusOK, resp.StatusCode)

	plan := body["plan"].(map[string]interface{})
	s.Equal("Room B", plan["room_name"])
	s.Equal(700.0, plan["monthly_rent"])
	s.Equal(1400.0, plan["security_deposit"])

	var stored model.Application
	s.Require().NoError(database.GetDB().First(&stored, app.ID).Error)
	s.Equal(model.ApplicationStatusApproved, stored.Status)
	s.Require().NotNil(stored.RoomID)
	s.Equal(room.ID, *stored.RoomID)

	// the room is only reserved; occupancy changes at move-in
	var storedRoom model.Room
	s.Require().NoError(database.GetDB().First(&storedRoom, room.ID).Error)
	s.True(storedRoom.IsVacant)
}

func (s *ApplicationLifecycleSuite) TestQualifyUndoesRejection() {
	app := s.createApplication(model.ApplicationStatusRejected)

	resp, body := s.request("POST", fmt.Sprintf("/api/applications/%d/qualify", app.ID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(body["message"], "restored to pending")

	var stored model.Application
	s.Require().NoError(database.GetDB().First(&stored, app.ID).Error)
	s.Equal(model.ApplicationStatusPending, stored.Status)
}

func (s *ApplicationLifecycleSuite) TestLeaseFromPendingIsBlocked() {
	app := s.createApplication(model.ApplicationStatusPending)

	resp, body := s.request("POST", "/api/leases/", fiber.Map{
		"application_id": app.ID,
		"start_date":     "2025-02-01",
		"monthly_rent":   700,
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("Application must be approved before generating lease.", body["error"])
	s.Equal(string(apperror.CodeTransitionBlocked), body["code"])
}

func (s *ApplicationLifecycleSuite) TestRejectMovedInApplication() {
	app := s.createApplication(model.ApplicationStatusApproved)
	lease := model.Lease{
		ApplicationID: &app.ID,
		TenantID:      s.tenant.ID,
		PropertyID:    s.property.ID,
		StartDate:     mustDate("2025-01-01"),
		EndDate:       mustDate("2026-01-01"),
		MonthlyRent:   700,
		Status:        model.LeaseStatusActive,
		IsActive:      true,
	}
	s.Require().NoError(database.GetDB().Create(&lease).Error)

	// the stored status says approved but the lease says moved in, and the
	// gate runs on the derived status
	resp, body := s.request("POST", fmt.Sprintf("/api/applications/%d/decide", app.ID), fiber.Map{
		"decision": "reject",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Contains(body["error"], "moved_in")
}

func (s *ApplicationLifecycleSuite) TestListShowsDerivedStatus() {
	app := s.createApplication(model.ApplicationStatusApproved)
	lease := model.Lease{
		ApplicationID: &app.ID,
		TenantID:      s.tenant.ID,
		PropertyID:    s.property.ID,
		StartDate:     mustDate("2025-01-01"),
		EndDate:       mustDate("2026-01-01"),
		MonthlyRent:   700,
		Status:        model.LeaseStatusSigned,
	}
	s.Require().NoError(database.GetDB().Create(&lease).Error)

	req := httptest.NewRequest("GET", "/api/applications/", nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var views []map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	s.Require().NoError(json.Unmarshal(raw, &views))
	s.Require().Len(views, 1)
	s.Equal(string(model.ApplicationStatusLeaseSigned), views[0]["status"])
	s.Equal(float64(lease.ID), views[0]["lease_id"])
}

func (s *ApplicationLifecycleSuite) TestFullPipeline() {
	room := s.createRoom("Room A", true, model.RoomStatusAvailable)
	app := s.createApplication(model.ApplicationStatusPending)

	// qualify
	resp, _ := s.request("POST", fmt.Sprintf("/api/applications/%d/qualify", app.ID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	// viewing can not be skipped once scheduled
	resp, _ = s.request("POST", fmt.Sprintf("/api/applications/%d/viewings", app.ID), fiber.Map{
		"scheduled_date": "2025-02-10",
		"scheduled_time": "14:00",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp, body := s.request("POST", fmt.Sprintf("/api/applications/%d/viewings/skip", app.ID), nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Contains(body["error"], "already scheduled")

	resp, _ = s.request("PUT", fmt.Sprintf("/api/applications/%d/viewings/complete", app.ID), fiber.Map{
		"outcome": "positive",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	// assign the room, generate and activate the lease
	resp, _ = s.request("POST", fmt.Sprintf("/api/applications/%d/assign-room", app.ID), fiber.Map{
		"room_id": room.ID,
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, body = s.request("POST", "/api/leases/", fiber.Map{
		"application_id": app.ID,
		"start_date":     "2025-02-15",
		"monthly_rent":   650,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	leaseID := uint(body["ID"].(float64))
	// deposit was omitted, defaults to two months of rent
	s.Equal(1300.0, body["security_deposit"])

	resp, _ = s.request("POST", fmt.Sprintf("/api/leases/%d/sign", leaseID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.request("POST", fmt.Sprintf("/api/leases/%d/activate", leaseID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var storedRoom model.Room
	s.Require().NoError(database.GetDB().First(&storedRoom, room.ID).Error)
	s.False(storedRoom.IsVacant)
	s.Equal(model.RoomStatusOccupied, storedRoom.Status)

	var storedApp model.Application
	s.Require().NoError(database.GetDB().First(&storedApp, app.ID).Error)
	s.Equal(model.ApplicationStatusMovedIn, storedApp.Status)

	// one empty calendar year: end date clamps to the same day next year
	var storedLease model.Lease
	s.Require().NoError(database.GetDB().First(&storedLease, leaseID).Error)
	s.Equal("2026-02-15", storedLease.EndDate.Format("2006-01-02"))

	// move out half way through
	resp, body = s.request("POST", fmt.Sprintf("/api/leases/%d/moveout", leaseID), fiber.Map{
		"move_out_date":    "2026-01-16",
		"deposit_returned": 1300,
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	impact := body["impact"].(map[string]interface{})
	s.Equal(30.0, impact["total_days_remaining"])
	s.Equal(650.0, impact["rent_forgo"])

	s.Require().NoError(database.GetDB().First(&storedRoom, room.ID).Error)
	s.True(storedRoom.IsVacant)
	s.Require().NoError(database.GetDB().First(&storedLease, leaseID).Error)
	s.Equal(model.LeaseStatusEnded, storedLease.Status)
	s.False(storedLease.IsActive)
	s.NotEmpty(storedLease.MoveOutDetails)
}

func (s *ApplicationLifecycleSuite) TestActivateEndedLeaseIsBlocked() {
	lease := s.createLease(model.LeaseStatusEnded)

	resp, body := s.request("POST", fmt.Sprintf("/api/leases/%d/activate", lease.ID), nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("Cannot activate lease in ended status.", body["error"])
	s.Equal(string(apperror.CodeTransitionBlocked), body["code"])
}

func (s *ApplicationLifecycleSuite) TestMoveOutBeforeActivationIsBlocked() {
	lease := s.createLease(model.LeaseStatusDraft)

	resp, body := s.request("POST", fmt.Sprintf("/api/leases/%d/moveout", lease.ID), fiber.Map{
		"move_out_date": "2025-06-01",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("Cannot process move-out for application in lease_created status.", body["error"])
	s.Equal(string(apperror.CodeTransitionBlocked), body["code"])

	var stored model.Lease
	s.Require().NoError(database.GetDB().First(&stored, lease.ID).Error)
	s.Equal(model.LeaseStatusDraft, stored.Status)
}

func (s *ApplicationLifecycleSuite) TestSendLeaseOnlyBeforeSigning() {
	draft := s.createLease(model.LeaseStatusDraft)
	resp, _ := s.request("POST", fmt.Sprintf("/api/leases/%d/send-to-tenant", draft.ID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var stored model.Lease
	s.Require().NoError(database.GetDB().First(&stored, draft.ID).Error)
	s.Equal(model.LeaseStatusSentToTenant, stored.Status)
	s.NotNil(stored.SentToTenantAt)

	// resending an unsigned lease is allowed
	resp, _ = s.request("POST", fmt.Sprintf("/api/leases/%d/send-to-tenant", draft.ID), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	signed := s.createLease(model.LeaseStatusSigned)
	resp, body := s.request("POST", fmt.Sprintf("/api/leases/%d/send-to-tenant", signed.ID), nil)
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(string(apperror.CodeTransitionBlocked), body["code"])
}

func mustDate(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}
