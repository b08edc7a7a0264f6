package controllers

import (
	"study-abroad-backend/db/models"
	"study-abroad-backend/middleware"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"
	"study-abroad-backend/visas/requests"
	"study-abroad-backend/visas/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type VisaController struct {
	Service *services.VisaService
}

func (vc *VisaController) GetEligibleCountries(c *fiber.Ctx) error {
	countries, err := vc.Service.EligibleCountries()
	if err != nil {
		return utils.RespondError(c, "Failed to fetch countries", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Countries retrieved successfully", countries)
}

func (vc *VisaController) RequestVisa(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}

	var req requests.VisaRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	visa, err := vc.Service.Request(c.Context(), principal, req.Country)
	if err != nil {
		return utils.RespondError(c, "Failed to request visa", err,
			zap.String("user_id", principal.UserID.String()),
			zap.String("country", req.Country),
		)
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Visa application submitted successfully", visa)
}

func (vc *VisaController) GetMyVisas(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	visas, err := vc.Service.History(principal)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch visas", err, zap.String("user_id", principal.UserID.String()))
	}

	var current *models.VisaPermit
	if len(visas) > 0 {
		current = &visas[0]
	}
	return utils.RespondOK(c, fiber.StatusOK, "Visas retrieved successfully", fiber.Map{
		"current": current,
		"history": visas,
	})
}

func (vc *VisaController) GetAllVisas(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	visas, total, err := vc.Service.List(c.Query("status"), params)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch visas", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Visas retrieved successfully",
		pagination.NewPaginatedResponse(c, visas, total, params))
}

func (vc *VisaController) DecideVisa(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	visaID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid visa ID", err)
	}

	var req requests.DecideVisaRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	decision, err := models.ParseDecision(req.Action)
	if err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	visa, err := vc.Service.Decide(c.Context(), principal, visaID, decision)
	if err != nil {
		return utils.RespondError(c, "Failed to process visa decision", err,
			zap.String("visa_id", visaID.String()),
			zap.String("user_id", principal.UserID.String()),
		)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Visa "+string(visa.ApplicationStatus), visa)
}
