package routes

import (
	"study-abroad-backend/db/models"
	"study-abroad-backend/documents/controllers"
	"study-abroad-backend/documents/repositories"
	"study-abroad-backend/documents/services"
	"study-abroad-backend/middleware"
	"study-abroad-backend/notifications"
	"study-abroad-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func DocumentRouterInit(app *fiber.App, db *gorm.DB, appCtx *middleware.AppContext, storage utils.FileStorage, notifier notifications.Notifier) {
	documentRepo := repositories.NewDocumentRepository(db)
	documentController := &controllers.DocumentController{
		DocumentService: services.NewDocumentService(db, documentRepo, storage, notifier),
	}

	documentRoutes := app.Group("/api/v1/applications/:id/documents", middleware.ProtectedRoute(appCtx))
	documentRoutes.Get("/", documentController.GetRequirements)
	documentRoutes.Post("/:reqId", middleware.RequireRole(models.StudentRole), documentController.UploadDocument)
	documentRoutes.Get("/:reqId/download", documentController.DownloadDocument)
	documentRoutes.Post("/:reqId/decision", middleware.RequireRole(models.MentorRole), documentController.DecideDocument)

	mentorRoutes := app.Group("/api/v1/documents", middleware.ProtectedRoute(appCtx), middleware.RequireRole(models.MentorRole))
	mentorRoutes.Get("/pending", documentController.GetPendingDocuments)
}
