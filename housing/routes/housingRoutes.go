package routes

import (
	"study-abroad-backend/db/models"
	"study-abroad-backend/housing/controllers"
	"study-abroad-backend/housing/services"
	"study-abroad-backend/middleware"

	"github.com/gofiber/fiber/v2"
)

func HousingRouterInit(app *fiber.App, appCtx *middleware.AppContext, housingService *services.HousingService) {
	housingController := &controllers.HousingController{Service: housingService}

	housingRoutes := app.Group("/api/v1/housing", middleware.ProtectedRoute(appCtx))
	housingRoutes.Get("/mine", middleware.RequireRole(models.StudentRole), housingController.GetMyHousing)
	housingRoutes.Post("/requests", middleware.RequireRole(models.StudentRole), housingController.RequestHousing)

	adminOnly := middleware.RequireRole(models.AdminRole)
	housingRoutes.Get("/requests/pending", adminOnly, housingController.GetPendingRequests)
	housingRoutes.Post("/requests/:id/decision", adminOnly, housingController.DecideHousingRequest)
	housingRoutes.Post("/assignments", adminOnly, housingController.AssignHousing)
	housingRoutes.Get("/occupancy", adminOnly, housingController.GetOccupancy)
}
