package routes

import (
	"clinic-portal/constants"
	assignmentController "clinic-portal/controllers/assignment"
	consentController "clinic-portal/controllers/consent"
	"clinic-portal/controllers/server"
	userController "clinic-portal/controllers/user"
	"clinic-portal/httpServices/notification"
	"clinic-portal/logger"
	"clinic-portal/middleware"
	"clinic-portal/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	store := storage.NewGormStore(db)
	asyncLogger := logger.NewAsyncLogger(db)
	notifier := notification.NewService()

	assignments := assignmentController.NewAssignmentController(store, asyncLogger)
	consents := consentController.NewConsentController(store, asyncLogger, notifier)
	users := userController.NewUserController(store)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	app.Get("/health", server.Health)

	api := app.Group("/api")

	/*=============================================================================
	| Profile Routes
	===============================================================================*/
	api.Get("/profile", middleware.RequireAuthentication(), users.Profile)

	/*=============================================================================
	| Assignment Routes
	===============================================================================*/
	assignmentGroup := api.Group("/assignments")

	assignmentGroup.Post("/", middleware.RequirePermissions(
		constants.PermDoctorFull,
		constants.PermAdminFull,
		constants.PermSuperAdminFull,
	), assignments.Store)

	assignmentGroup.Get("/", middleware.RequireAuthentication(), assignments.Index)
	assignmentGroup.Get("/:id", middleware.RequireAuthentication(), assignments.Show)

	assignmentGroup.Post("/deactivate", middleware.RequirePermissions(
		constants.PermDoctorFull,
		constants.PermAdminFull,
		constants.PermSuperAdminFull,
	), assignments.Deactivate)

	/*=============================================================================
	| Consent Routes
	===============================================================================*/
	consentGroup := api.Group("/consent")

	consentGroup.Post("/request", middleware.RequirePermissions(
		constants.PermDoctorFull,
	), consents.RequestConsent)

	// The patient enters the code themselves or reads it to clinic staff,
	// so verification only needs an authenticated session.
	consentGroup.Post("/verify", middleware.RequireAuthentication(), consents.VerifyConsent)

	consentGroup.Post("/status", middleware.RequirePermissions(
		constants.PermDoctorFull,
	), consents.Status)
}
