package routes

import (
	"study-abroad-backend/db/models"
	"study-abroad-backend/middleware"
	"study-abroad-backend/notifications"
	"study-abroad-backend/scholarships/controllers"
	"study-abroad-backend/scholarships/repositories"
	"study-abroad-backend/scholarships/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ScholarshipRouterInit(app *fiber.App, db *gorm.DB, appCtx *middleware.AppContext, notifier notifications.Notifier) {
	scholarshipController := &controllers.ScholarshipController{
		Service: services.NewScholarshipService(db, repositories.NewScholarshipRepository(db), notifier),
	}

	scholarshipRoutes := app.Group("/api/v1/scholarships", middleware.ProtectedRoute(appCtx))
	scholarshipRoutes.Get("/available/:applicationId", scholarshipController.GetAvailableScholarships)
	scholarshipRoutes.Get("/applications", scholarshipController.GetScholarshipApplications)
	scholarshipRoutes.Post("/applications", middleware.RequireRole(models.StudentRole), scholarshipController.ApplyForScholarship)
	scholarshipRoutes.Post("/applications/:id/decision", middleware.RequireRole(models.MentorRole, models.AdminRole), scholarshipController.DecideScholarshipApplication)
}
