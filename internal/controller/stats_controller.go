package controller

import (
	"fmt"

	"tink_backend/internal/model"
	"tink_backend/pkg/cache"
	"tink_backend/pkg/database"

	"github.com/gofiber/fiber/v2"
)

// DashboardStats is the landlord overview, cached briefly in Redis because
// the pipeline board polls it.
type DashboardStats struct {
	Properties          int64   `json:"properties"`
	TotalRooms          int64   `json:"total_rooms"`
	OccupiedRooms       int64   `json:"occupied_rooms"`
	Tenants             int64   `json:"tenants"`
	PendingApplications int64   `json:"pending_applications"`
	ActiveLeases        int64   `json:"active_leases"`
	DraftLeases         int64   `json:"draft_leases"`
	MonthlyRevenue      float64 `json:"monthly_revenue"`
}

func GetDashboardStats(c *fiber.Ctx) error {
	claims := currentUser(c)
	key := fmt.Sprintf(cache.DashboardStatsKeyFmt, claims.UserID)

	var stats DashboardStats
	if cache.GetJSON(c.Context(), key, &stats) {
		return c.JSON(stats)
	}

	db := database.GetDB()

	db.Model(&model.Property{}).Where("user_id = ?", claims.UserID).Count(&stats.Properties)
	db.Model(&model.Room{}).
		Joins("JOIN properties ON properties.id = rooms.property_id").
		Where("properties.user_id = ?", claims.UserID).
		Count(&stats.TotalRooms)
	db.Model(&model.Room{}).
		Joins("JOIN properties ON properties.id = rooms.property_id").
		Where("properties.user_id = ? AND rooms.status = ?", claims.UserID, model.RoomStatusOccupied).
		Count(&stats.OccupiedRooms)
	db.Model(&model.Tenant{}).Where("user_id = ?", claims.UserID).Count(&stats.Tenants)
	db.Model(&model.Application{}).
		Joins("JOIN properties ON properties.id = applications.property_id").
		Where("properties.user_id = ? AND applications.status = ?", claims.UserID, model.ApplicationStatusPending).
		Count(&stats.PendingApplications)
	db.Model(&model.Lease{}).
		Joins("JOIN properties ON properties.id = leases.property_id").
		Where("properties.user_id = ? AND leases.is_active = ?", claims.UserID, true).
		Count(&stats.ActiveLeases)
	db.Model(&model.Lease{}).
		Joins("JOIN properties ON properties.id = leases.property_id").
		Where("properties.user_id = ? AND leases.status = ?", claims.UserID, model.LeaseStatusDraft).
		Count(&stats.DraftLeases)
	db.Model(&model.Lease{}).
		Joins("JOIN properties ON properties.id = leases.property_id").
		Where("properties.user_id = ? AND leases.is_active = ?", claims.UserID, true).
		Select("COALESCE(SUM(leases.monthly_rent), 0)").
		Scan(&stats.MonthlyRevenue)

	cache.SetJSON(c.Context(), key, stats, cache.StatsTTL)

	return c.JSON(stats)
}
