package routes

import (
	"study-abroad-backend/applications/controllers"
	"study-abroad-backend/applications/repositories"
	"study-abroad-backend/applications/services"
	"study-abroad-backend/db/models"
	"study-abroad-backend/middleware"
	"study-abroad-backend/notifications"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ApplicationRouterInit(app *fiber.App, db *gorm.DB, appCtx *middleware.AppContext, notifier notifications.Notifier) {
	applicationRepo := repositories.NewApplicationRepository(db)
	applicationController := &controllers.ApplicationController{
		Service: services.NewApplicationService(db, applicationRepo, notifier),
	}

	applicationRoutes := app.Group("/api/v1/applications", middleware.ProtectedRoute(appCtx))
	applicationRoutes.Post("/", middleware.RequireRole(models.StudentRole), applicationController.SubmitApplication)
	applicationRoutes.Get("/mine", middleware.RequireRole(models.StudentRole), applicationController.GetMyApplications)
	applicationRoutes.Get("/review", middleware.RequireRole(models.MentorRole, models.AdminRole), applicationController.GetReviewQueue)
	applicationRoutes.Post("/:id/decision", middleware.RequireRole(models.MentorRole, models.AdminRole), applicationController.DecideApplication)
	applicationRoutes.Get("/:id/history", applicationController.GetApplicationHistory)
}
