package controllers

import (
	"study-abroad-backend/db/models"
	"study-abroad-backend/housing/requests"
	"study-abroad-backend/housing/services"
	"study-abroad-backend/middleware"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type HousingController struct {
	Service *services.HousingService
}

func (hc *HousingController) RequestHousing(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}

	var req requests.HousingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	housingReq, created, err := hc.Service.Request(c.Context(), principal, models.HousingRequestType(req.RequestType))
	if err != nil {
		return utils.RespondError(c, "Failed to submit housing request", err,
			zap.String("user_id", principal.UserID.String()),
			zap.String("request_type", req.RequestType),
		)
	}
	if !created {
		return utils.RespondOK(c, fiber.StatusOK, "A pending request of this type already exists", housingReq)
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Housing request submitted successfully", housingReq)
}

func (hc *HousingController) GetMyHousing(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	housing, err := hc.Service.ForStudent(principal)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch housing", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Housing retrieved successfully", housing)
}

func (hc *HousingController) GetPendingRequests(c *fiber.Ctx) error {
	reqs, err := hc.Service.PendingRequests()
	if err != nil {
		return utils.RespondError(c, "Failed to fetch housing requests", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Housing requests retrieved successfully", reqs)
}

func (hc *HousingController) GetOccupancy(c *fiber.Ctx) error {
	rows, err := hc.Service.Occupancy()
	if err != nil {
		return utils.RespondError(c, "Failed to fetch occupancy", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Occupancy retrieved successfully", rows)
}

func (hc *HousingController) DecideHousingRequest(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	requestID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid housing request ID", err)
	}

	var req requests.DecideHousingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	decision, err := models.ParseDecision(req.Action)
	if err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	result, err := hc.Service.Decide(c.Context(), principal, requestID, decision)
	if err != nil {
		return utils.RespondError(c, "Failed to process housing decision", err,
			zap.String("request_id", requestID.String()),
			zap.String("user_id", principal.UserID.String()),
		)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Housing request processed: "+string(result.Outcome), result)
}

func (hc *HousingController) AssignHousing(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}

	var req requests.AssignHousingRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondError(c, "Invalid request", apperrors.NewValidationError("invalid request format"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	studentID, err := utils.ParseUUIDValue("student_id", req.StudentID)
	if err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	housingID, err := utils.ParseUUIDValue("housing_id", req.HousingID)
	if err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}

	assignment, err := hc.Service.Assign(c.Context(), principal, studentID, housingID)
	if err != nil {
		return utils.RespondError(c, "Failed to assign housing", err,
			zap.String("student_id", studentID.String()),
			zap.String("housing_id", housingID.String()),
		)
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Housing assigned successfully", assignment)
}
