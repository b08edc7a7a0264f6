package routes

import (
	"study-abroad-backend/db/models"
	housingrepos "study-abroad-backend/housing/repositories"
	"study-abroad-backend/middleware"
	"study-abroad-backend/reports/controllers"
	"study-abroad-backend/reports/repositories"
	"study-abroad-backend/reports/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ReportRouterInit(app *fiber.App, db *gorm.DB, appCtx *middleware.AppContext) {
	reportController := &controllers.ReportController{
		Service: services.NewReportService(db, repositories.NewReportRepository(db), housingrepos.NewHousingRepository(db)),
	}

	reportRoutes := app.Group("/api/v1/reports", middleware.ProtectedRoute(appCtx))
	reportRoutes.Get("/applications.xlsx", middleware.RequireRole(models.AdminRole), reportController.ExportApplications)
	reportRoutes.Get("/housing-occupancy.xlsx", middleware.RequireRole(models.AdminRole), reportController.ExportOccupancy)
	reportRoutes.Get("/letters/visa/:id", middleware.RequireRole(models.StudentRole, models.AdminRole), reportController.DownloadVisaLetter)
	reportRoutes.Get("/letters/housing", middleware.RequireRole(models.StudentRole, models.AdminRole), reportController.DownloadHousingLetter)
}
