package controllers

import (
	"study-abroad-backend/auth/requests"
	"study-abroad-backend/middleware"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (ac *AuthController) SetupTOTP(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}

	setup, err := ac.TOTP.GenerateTOTPSecret(c.Context(), principal.UserID.String(), principal.Email)
	if err != nil {
		return utils.RespondError(c, "Could not set up TOTP", apperrors.Conflict(err.Error()), zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Scan the QR code and confirm with a code", setup)
}

func (ac *AuthController) EnableTOTP(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	var req requests.TOTPCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	if err := ac.TOTP.EnableTOTP(c.Context(), principal.UserID.String(), req.Code); err != nil {
		return utils.RespondError(c, "Could not enable TOTP", apperrors.NewValidationError("%s", err.Error()), zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "TOTP enabled", nil)
}

func (ac *AuthController) DisableTOTP(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	var req requests.TOTPCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if !ac.TOTP.ValidateTOTPCode(c.Context(), principal.UserID.String(), req.Code) {
		return utils.RespondError(c, "Could not disable TOTP", apperrors.NewValidationError("invalid TOTP code"))
	}
	if err := ac.TOTP.DisableTOTP(c.Context(), principal.UserID.String()); err != nil {
		return utils.RespondError(c, "Could not disable TOTP", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "TOTP disabled", nil)
}
