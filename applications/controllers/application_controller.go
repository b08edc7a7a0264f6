package controllers

import (
	"study-abroad-backend/applications/requests"
	"study-abroad-backend/applications/services"
	"study-abroad-backend/db/models"
	"study-abroad-backend/middleware"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ApplicationController struct {
	Service *services.ApplicationService
}

func (ac *ApplicationController) SubmitApplication(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}

	var req requests.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	programID, err := utils.ParseUUIDValue("program_id", req.ProgramID)
	if err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	application, created, err := ac.Service.Submit(c.Context(), principal, programID)
	if err != nil {
		return utils.RespondError(c, "Failed to submit application", err,
			zap.String("user_id", principal.UserID.String()),
			zap.String("program_id", programID.String()),
		)
	}

	if !created {
		return utils.RespondOK(c, fiber.StatusOK, "Already applied to this program", application)
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Application submitted successfully", application)
}

func (ac *ApplicationController) DecideApplication(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	applicationID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid application ID", err)
	}

	var req requests.DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	decision, err := models.ParseDecision(req.Action)
	if err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	application, err := ac.Service.Decide(c.Context(), principal, applicationID, decision)
	if err != nil {
		return utils.RespondError(c, "Failed to process application decision", err,
			zap.String("application_id", applicationID.String()),
			zap.String("user_id", principal.UserID.String()),
			zap.String("role", string(principal.Role)),
		)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Application "+string(application.Status), application)
}

func (ac *ApplicationController) GetMyApplications(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	applications, err := ac.Service.ListForStudent(principal)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch applications", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Applications retrieved successfully", applications)
}

func (ac *ApplicationController) GetReviewQueue(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	params := pagination.ParsePaginationParams(c)

	rows, total, err := ac.Service.ListForReviewer(principal, c.Query("status"), params)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch applications", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Applications retrieved successfully",
		pagination.NewPaginatedResponse(c, rows, total, params))
}

func (ac *ApplicationController) GetApplicationHistory(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	applicationID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid application ID", err)
	}
	logs, err := ac.Service.History(principal, applicationID)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch decision history", err, zap.String("application_id", applicationID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Decision history retrieved", logs)
}
