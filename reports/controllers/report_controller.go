package controllers

import (
	"fmt"

	"study-abroad-backend/middleware"
	"study-abroad-backend/reports/services"
	"study-abroad-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportController struct {
	Service *services.ReportService
}

func (rc *ReportController) ExportApplications(c *fiber.Ctx) error {
	link, err := rc.Service.ExportApplications(c.Query("status"))
	if err != nil {
		return utils.RespondError(c, "Failed to export applications", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Applications export ready", fiber.Map{"download_link": utils.GetDownloadURL(c, link)})
}

func (rc *ReportController) ExportOccupancy(c *fiber.Ctx) error {
	link, err := rc.Service.ExportOccupancy()
	if err != nil {
		return utils.RespondError(c, "Failed to export housing occupancy", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Housing occupancy export ready", fiber.Map{"download_link": utils.GetDownloadURL(c, link)})
}

func (rc *ReportController) DownloadVisaLetter(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	visaID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid visa ID", err)
	}

	pdf, fileName, err := rc.Service.VisaLetter(c.Context(), principal, visaID)
	if err != nil {
		return utils.RespondError(c, "Failed to generate visa letter", err,
			zap.String("visa_id", visaID.String()),
			zap.String("user_id", principal.UserID.String()),
		)
	}
	return sendPDF(c, pdf, fileName)
}

// DownloadHousingLetter prints the caller's own letter; admins pass ?student_id.
func (rc *ReportController) DownloadHousingLetter(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	studentID := principal.UserID
	if raw := c.Query("student_id"); raw != "" {
		if studentID, err = utils.ParseUUIDValue("student_id", raw); err != nil {
			return utils.RespondError(c, "Invalid student ID", err)
		}
	}

	pdf, fileName, err := rc.Service.HousingLetter(c.Context(), principal, studentID)
	if err != nil {
		return utils.RespondError(c, "Failed to generate housing letter", err,
			zap.String("student_id", studentID.String()),
			zap.String("user_id", principal.UserID.String()),
		)
	}
	return sendPDF(c, pdf, fileName)
}

func sendPDF(c *fiber.Ctx, pdf []byte, fileName string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(pdf)
}
