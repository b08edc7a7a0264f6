package controllers

import (
	"errors"

	"study-abroad-backend/auth/requests"
	"study-abroad-backend/auth/services"
	"study-abroad-backend/config"
	"study-abroad-backend/middleware"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthController struct {
	Service *services.AuthService
	TOTP    services.TOTPService
	AppCtx  *middleware.AppContext
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req requests.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	principal, err := ac.Service.Login(c.Context(), req)
	if errors.Is(err, services.ErrTOTPRequired) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "TOTP verification required",
			"data":    fiber.Map{"requires_totp": true},
			"error":   "totp code required",
		})
	}
	if err != nil {
		return utils.RespondError(c, "Authentication failed", err, zap.String("email", req.Email))
	}

	if err := middleware.IssueSession(c, ac.AppCtx, principal); err != nil {
		return utils.RespondError(c, "Could not start session", err, zap.String("user_id", principal.UserID.String()))
	}

	return utils.RespondOK(c, fiber.StatusOK, "Login successful", principal)
}

func (ac *AuthController) Signup(c *fiber.Ctx) error {
	var req requests.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	student, err := ac.Service.SignupStudent(req)
	if err != nil {
		return utils.RespondError(c, "Signup failed", err, zap.String("email", req.Email))
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Account created", student)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	middleware.ClearSession(c, ac.AppCtx)
	config.Logger.Info("User logged out successfully", zap.String("client_ip", c.IP()))
	return utils.RespondOK(c, fiber.StatusOK, "Logged out successfully", nil)
}

func (ac *AuthController) Me(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	profile, err := ac.Service.Profile(principal)
	if err != nil {
		return utils.RespondError(c, "Could not load profile", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Profile retrieved", fiber.Map{
		"principal": principal,
		"profile":   profile,
	})
}

func (ac *AuthController) UpdateStudentProfile(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	var req requests.StudentProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	student, err := ac.Service.UpdateStudentProfile(principal, req)
	if err != nil {
		return utils.RespondError(c, "Could not update profile", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Profile updated", student)
}

func (ac *AuthController) UpdateMentorProfile(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	var req requests.MentorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	mentor, err := ac.Service.UpdateMentorProfile(principal, req)
	if err != nil {
		return utils.RespondError(c, "Could not update profile", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Profile updated", mentor)
}
