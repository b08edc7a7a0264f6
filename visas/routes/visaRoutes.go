package routes

import (
	"study-abroad-backend/db/models"
	"study-abroad-backend/middleware"
	"study-abroad-backend/visas/controllers"
	"study-abroad-backend/visas/services"

	"github.com/gofiber/fiber/v2"
)

func VisaRouterInit(app *fiber.App, appCtx *middleware.AppContext, visaService *services.VisaService) {
	visaController := &controllers.VisaController{Service: visaService}

	visaRoutes := app.Group("/api/v1/visas", middleware.ProtectedRoute(appCtx))
	visaRoutes.Get("/countries", visaController.GetEligibleCountries)
	visaRoutes.Get("/mine", middleware.RequireRole(models.StudentRole), visaController.GetMyVisas)
	visaRoutes.Post("/", middleware.RequireRole(models.StudentRole), visaController.RequestVisa)
	visaRoutes.Get("/", middleware.RequireRole(models.AdminRole), visaController.GetAllVisas)
	visaRoutes.Post("/:id/decision", middleware.RequireRole(models.AdminRole), visaController.DecideVisa)
}
