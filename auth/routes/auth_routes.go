package routes

import (
	"study-abroad-backend/auth/controllers"
	"study-abroad-backend/auth/repositories"
	"study-abroad-backend/auth/services"
	"study-abroad-backend/db/models"
	"study-abroad-backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func InitRoutes(
	app *fiber.App,
	db *gorm.DB,
	appCtx *middleware.AppContext,
	loginLimiter *middleware.KeyedLimiter,
) {
	accountRepo := repositories.NewAccountRepository(db)
	totpService := services.NewTOTPService(appCtx.RedisClient, "Study Abroad Portal")

	authController := &controllers.AuthController{
		Service: services.NewAuthService(db, accountRepo, totpService),
		TOTP:    totpService,
		AppCtx:  appCtx,
	}

	auth := app.Group("/api/v1/auth")
	auth.Post("/login", middleware.LoginRateLimiter(loginLimiter), authController.Login)
	auth.Post("/signup", middleware.LoginRateLimiter(loginLimiter), authController.Signup)
	auth.Post("/logout", authController.Logout)

	account := app.Group("/api/v1/account", middleware.ProtectedRoute(appCtx))
	account.Get("/me", authController.Me)
	account.Put("/profile/student", middleware.RequireRole(models.StudentRole), authController.UpdateStudentProfile)
	account.Put("/profile/mentor", middleware.RequireRole(models.MentorRole), authController.UpdateMentorProfile)

	totp := account.Group("/totp", middleware.RequireRole(models.AdminRole))
	totp.Post("/setup", authController.SetupTOTP)
	totp.Post("/enable", authController.EnableTOTP)
	totp.Post("/disable", authController.DisableTOTP)
}
