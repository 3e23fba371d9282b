package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"tink_backend/internal/controller"
	"tink_backend/internal/middleware"
	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/cache"
	"tink_backend/pkg/config"
	"tink_backend/pkg/cron"
	"tink_backend/pkg/database"
	"tink_backend/pkg/email"
	"tink_backend/pkg/metrics"
	"tink_backend/pkg/seed"
)

func setupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Auth Routes
	auth := api.Group("/auth")
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)

	// Public Listing Routes
	api.Get("/listings", controller.GetPublicListings)
	api.Get("/p/:slug", controller.GetPublicListingBySlug)
	api.Post("/listings/:id/applications", controller.SubmitPublicApplication)

	// Stripe webhook
	api.Post("/webhook", controller.HandleStripeWebhook)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware())
	protected.Get("/me", controller.GetMe)
	protected.Put("/me", controller.UpdateProfile)

	// Property Routes
	properties := protected.Group("/properties")
	properties.Get("/", controller.GetMyProperties)
	properties.Post("/", controller.CreateProperty)
	properties.Get("/:id", controller.GetProperty)
	properties.Put("/:id", middleware.CheckPropertyOwnership(), controller.UpdateProperty)
	properties.Delete("/:id", middleware.CheckPropertyOwnership(), controller.DeleteProperty)
	properties.Post("/:id/images", middleware.CheckPropertyOwnership(), controller.UploadPropertyImage)
	properties.Delete("/:id/images/:imageId", middleware.CheckPropertyOwnership(), controller.DeletePropertyImage)

	// Room Routes
	properties.Get("/:id/rooms", controller.GetPropertyRooms)
	properties.Post("/:id/rooms", middleware.CheckPropertyOwnership(), controller.CreateRoom)
	properties.Put("/:id/rooms/:roomId", middleware.CheckPropertyOwnership(), controller.UpdateRoom)
	properties.Delete("/:id/rooms/:roomId", middleware.CheckPropertyOwnership(), controller.DeleteRoom)

	// Tenant Routes
	tenants := protected.Group("/tenants")
	tenants.Get("/", controller.GetTenants)
	tenants.Post("/", controller.CreateTenant)
	tenants.Get("/:id", controller.GetTenant)
	tenants.Put("/:id", controller.UpdateTenant)
	tenants.Delete("/:id", controller.DeleteTenant)
	tenants.Post("/:id/documents", controller.UploadTenantDocument)

	// Application Routes
	applications := protected.Group("/applications")
	applications.Get("/", controller.GetApplications)
	applications.Post("/", controller.CreateApplication)
	applications.Get("/:id", controller.GetApplication)
	applications.Put("/:id", controller.UpdateApplication)
	applications.Delete("/:id", controller.DeleteApplication)
	applications.Post("/:id/qualify", controller.QualifyApplication)
	applications.Post("/:id/decide", controller.DecideApplication)
	applications.Post("/:id/quick-approve", controller.QuickApproveApplication)
	applications.Post("/:id/assign-room", controller.AssignRoom)
	applications.Post("/:id/viewings", controller.ScheduleViewing)
	applications.Put("/:id/viewings/complete", controller.CompleteViewing)
	applications.Put("/:id/viewings/reschedule", controller.RescheduleViewing)
	applications.Post("/:id/viewings/skip", controller.SkipViewing)

	// Viewing calendar
	protected.Get("/viewings", controller.GetViewings)

	// Lease Routes
	leases := protected.Group("/leases")
	leases.Get("/", controller.GetLeases)
	leases.Post("/", controller.CreateLease)
	leases.Get("/:id", controller.GetLease)
	leases.Put("/:id", controller.UpdateLease)
	leases.Delete("/:id", controller.DeleteLease)
	leases.Post("/:id/send-to-tenant", controller.SendLeaseToTenant)
	leases.Post("/:id/sign", controller.SignLease)
	leases.Post("/:id/activate", controller.ActivateLease)
	leases.Get("/:id/moveout-preview", controller.MoveOutPreview)
	leases.Post("/:id/moveout", controller.ProcessMoveOut)
	leases.Get("/:id/download", controller.DownloadLease)

	// Payment Routes
	payments := protected.Group("/payments")
	payments.Get("/", controller.GetPayments)
	payments.Post("/rent-intent", middleware.RequireRole(model.RoleLandlord), controller.CreateRentPayment)

	// Dashboard routes
	dashboard := api.Group("/dashboard", middleware.AuthMiddleware())
	dashboard.Get("/stats", controller.GetDashboardStats)
}

func main() {
	cfg := config.Load()

	if cfg.Resend.APIKey != "" {
		if err := email.InitEmailService(cfg.Resend.APIKey, cfg.Resend.From); err != nil {
			log.Fatal("Could not initialize email service:", err)
		}
	} else {
		log.Println("RESEND_API_KEY is not set, email notifications disabled")
	}

	if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password); err != nil {
		log.Printf("Redis unavailable, stats caching disabled: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	database.InitDB(cfg.Database.URL)
	err := database.MigrateDatabase(
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
	)
	if err != nil {
		log.Printf("Migration warning: %v", err)
	}

	seed.SeedDemoData(database.GetDB())

	cron.InitApplicationStatsCron()
	cron.InitLeaseExpiryCron()
	cron.InitVacancyRecountCron()

	app := fiber.New(fiber.Config{
		ErrorHandler: apperror.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.MetricsMiddleware())

	app.Get("/metrics", metrics.Handler())

	setupRoutes(app)

	log.Printf("Server is running on port %s", cfg.Server.Port)
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
