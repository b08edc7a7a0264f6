package routes

import (
	"study-abroad-backend/catalog/controllers"
	"study-abroad-backend/catalog/services"
	"study-abroad-backend/db/models"
	"study-abroad-backend/middleware"

	"github.com/gofiber/fiber/v2"
)

func CatalogRouterInit(app *fiber.App, appCtx *middleware.AppContext, catalogService *services.CatalogService) {
	catalogController := &controllers.CatalogController{Service: catalogService}

	programRoutes := app.Group("/api/v1/programs", middleware.ProtectedRoute(appCtx))
	programRoutes.Get("/", catalogController.GetPrograms)
	programRoutes.Get("/search", catalogController.SearchPrograms)
	programRoutes.Get("/:id", catalogController.GetProgram)
	programRoutes.Get("/:id/required-documents", catalogController.GetRequiredDocuments)

	dashboardRoutes := app.Group("/api/v1/dashboard", middleware.ProtectedRoute(appCtx))
	dashboardRoutes.Get("/student", middleware.RequireRole(models.StudentRole), catalogController.GetStudentDashboard)
	dashboardRoutes.Get("/mentor", middleware.RequireRole(models.MentorRole), catalogController.GetMentorDashboard)
	dashboardRoutes.Get("/mentor/students", middleware.RequireRole(models.MentorRole), catalogController.GetAssignedStudents)

	adminRoutes := app.Group("/api/v1/admin", middleware.ProtectedRoute(appCtx), middleware.RequireRole(models.AdminRole))
	adminRoutes.Get("/dashboard", catalogController.GetAdminDashboard)

	adminRoutes.Post("/universities", catalogController.CreateUniversity)
	adminRoutes.Get("/universities", catalogController.GetUniversities)
	adminRoutes.Delete("/universities/:id", catalogController.DeleteUniversity)

	adminRoutes.Post("/mentors", catalogController.CreateMentor)
	adminRoutes.Get("/mentors", catalogController.GetMentors)
	adminRoutes.Delete("/mentors/:id", catalogController.DeleteMentor)

	adminRoutes.Get("/students", catalogController.GetStudents)
	adminRoutes.Delete("/students/:id", catalogController.DeleteStudent)

	adminRoutes.Post("/programs", catalogController.CreateProgram)
	adminRoutes.Delete("/programs/:id", catalogController.DeleteProgram)
	adminRoutes.Post("/programs/:id/required-documents", catalogController.AddRequiredDocument)
	adminRoutes.Delete("/programs/:id/required-documents/:docId", catalogController.DeleteRequiredDocument)

	adminRoutes.Post("/scholarships", catalogController.CreateScholarship)
	adminRoutes.Get("/scholarships", catalogController.GetScholarships)
	adminRoutes.Delete("/scholarships/:id", catalogController.DeleteScholarship)

	adminRoutes.Post("/housing", catalogController.CreateHousing)
	adminRoutes.Get("/housing", catalogController.GetHousing)
	adminRoutes.Delete("/housing/:id", catalogController.DeleteHousing)
}
