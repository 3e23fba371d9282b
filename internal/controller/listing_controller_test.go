package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/database"
)

type PublicListingSuite struct {
	suite.Suite

	app      *fiber.App
	landlord model.User
	property model.Property
}

func TestPublicListingSuite(t *testing.T) {
	suite.Run(t, new(PublicListingSuite))
}

func (s *PublicListingSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(
		&model.User{}, &model.Property{}, &model.PropertyImage{}, &model.Room{},
		&model.Tenant{}, &model.Application{}, &model.Viewing{}, &model.Lease{},
	))
	database.SetDB(db)

	s.landlord = model.User{Email: "owner@test.local", Password: "x", Role: model.RoleLandlord, FirstName: "Olga", IsActive: true}
	s.Require().NoError(db.Create(&s.landlord).Error)

	s.property = model.Property{
		UserID:       s.landlord.ID,
		Name:         "Listed House",
		PropertyType: model.PropertyTypeHouse,
		RentType:     model.RentPerProperty,
		MonthlyRent:  1100,
		AddressLine1: "1 Open St",
		City:         "Testville",
		IsListed:     true,
	}
	s.Require().NoError(db.Create(&s.property).Error)

	s.app = fiber.New(fiber.Config{ErrorHandler: apperror.ErrorHandler})
	s.app.Get("/api/listings", GetPublicListings)
	s.app.Get("/api/p/:slug", GetPublicListingBySlug)
	s.app.Post("/api/listings/:id/applications", SubmitPublicApplication)
}

func (s *PublicListingSuite) post(path string, body interface{}) (*http.Response, map[string]interface{}) {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)

	data, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var parsed map[string]interface{}
	if len(data) > 0 {
		s.Require().NoError(json.Unmarshal(data, &parsed))
	}
	return resp, parsed
}

func (s *PublicListingSuite) TestUnlistedPropertiesAreHidden() {
	hidden := model.Property{
		UserID: s.landlord.ID, Name: "Hidden House", PropertyType: model.PropertyTypeHouse,
		RentType: model.RentPerProperty, AddressLine1: "2 Closed St", City: "Testville", IsListed: false,
	}
	s.Require().NoError(database.GetDB().Create(&hidden).Error)

	req := httptest.NewRequest("GET", "/api/listings", nil)
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var listings []map[string]interface{}
	s.Require().NoError(json.Unmarshal(raw, &listings))
	s.Require().Len(listings, 1)
	s.Equal("Listed House", listings[0]["name"])
	// internal fields never leak to the public payload
	s.NotContains(listings[0], "landlord")
	s.NotContains(listings[0], "address_line1")
}

func (s *PublicListingSuite) TestSubmitApplicationCreatesTenant() {
	resp, body := s.post(fmt.Sprintf("/api/listings/%d/applications", s.property.ID), fiber.Map{
		"full_name":            "New Applicant",
		"email":                "new@applicant.test",
		"desired_move_in_date": "2025-04-01",
		"rent_budget":          1000,
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Contains(body["message"], "submitted")

	var tenant model.Tenant
	s.Require().NoError(database.GetDB().
		Where("email = ?", "new@applicant.test").First(&tenant).Error)
	s.Equal(s.landlord.ID, tenant.UserID)

	var app model.Application
	s.Require().NoError(database.GetDB().
		Where("tenant_id = ?", tenant.ID).First(&app).Error)
	s.Equal(model.ApplicationStatusPending, app.Status)
	s.Require().NotNil(app.DesiredMoveInDate)
	s.Equal("2025-04-01", app.DesiredMoveInDate.Format("2006-01-02"))
}

func (s *PublicListingSuite) TestSubmitApplicationValidation() {
	resp, body := s.post(fmt.Sprintf("/api/listings/%d/applications", s.property.ID), fiber.Map{
		"full_name": "No Email",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(body["error"], "required")

	resp, body = s.post(fmt.Sprintf("/api/listings/%d/applications", s.property.ID), fiber.Map{
		"full_name": "Bad Email",
		"email":     "not-an-email",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Contains(body["error"], "email")
}

func (s *PublicListingSuite) TestDuplicateOpenApplicationIsRejected() {
	payload := fiber.Map{
		"full_name": "Repeat Applicant",
		"email":     "repeat@applicant.test",
	}

	resp, _ := s.post(fmt.Sprintf("/api/listings/%d/applications", s.property.ID), payload)
	s.Equal(http.StatusCreated, resp.StatusCode)

	resp, body := s.post(fmt.Sprintf("/api/listings/%d/applications", s.property.ID), payload)
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Contains(body["error"], "open application")
}
