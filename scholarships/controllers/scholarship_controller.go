package controllers

import (
	"study-abroad-backend/db/models"
	"study-abroad-backend/middleware"
	"study-abroad-backend/scholarships/requests"
	"study-abroad-backend/scholarships/services"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ScholarshipController struct {
	Service *services.ScholarshipService
}

func (sc *ScholarshipController) ApplyForScholarship(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}

	var req requests.ApplyScholarshipRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	applicationID, err := utils.ParseUUIDValue("application_id", req.ApplicationID)
	if err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	scholarshipID, err := utils.ParseUUIDValue("scholarship_id", req.ScholarshipID)
	if err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	schApp, created, err := sc.Service.Apply(c.Context(), principal, applicationID, scholarshipID)
	if err != nil {
		return utils.RespondError(c, "Failed to apply for scholarship", err,
			zap.String("application_id", applicationID.String()),
			zap.String("scholarship_id", scholarshipID.String()),
			zap.String("user_id", principal.UserID.String()),
		)
	}
	if !created {
		return utils.RespondOK(c, fiber.StatusOK, "Already applied for this scholarship", schApp)
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Scholarship application submitted successfully", schApp)
}

func (sc *ScholarshipController) DecideScholarshipApplication(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	schAppID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid scholarship application ID", err)
	}

	var req requests.DecideScholarshipRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	decision, err := models.ParseDecision(req.Action)
	if err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	schApp, err := sc.Service.Decide(c.Context(), principal, schAppID, decision)
	if err != nil {
		return utils.RespondError(c, "Failed to process scholarship decision", err,
			zap.String("scholarship_application_id", schAppID.String()),
			zap.String("user_id", principal.UserID.String()),
			zap.String("role", string(principal.Role)),
		)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Scholarship application "+string(schApp.Status), schApp)
}

func (sc *ScholarshipController) GetAvailableScholarships(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	applicationID, err := utils.ParseUUIDParam(c, "applicationId")
	if err != nil {
		return utils.RespondError(c, "Invalid application ID", err)
	}

	scholarships, err := sc.Service.AvailableFor(principal, applicationID)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch scholarships", err, zap.String("application_id", applicationID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Scholarships retrieved successfully", scholarships)
}

func (sc *ScholarshipController) GetScholarshipApplications(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	rows, err := sc.Service.List(principal, c.Query("status"))
	if err != nil {
		return utils.RespondError(c, "Failed to fetch scholarship applications", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Scholarship applications retrieved successfully", rows)
}
