package controllers

import (
	"study-abroad-backend/middleware"
	"study-abroad-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (cc *CatalogController) GetAdminDashboard(c *fiber.Ctx) error {
	counts, err := cc.Service.AdminDashboard(c.Context())
	if err != nil {
		return utils.RespondError(c, "Failed to load dashboard", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Dashboard retrieved successfully", counts)
}

func (cc *CatalogController) GetStudentDashboard(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	dashboard, err := cc.Service.StudentDashboard(principal)
	if err != nil {
		return utils.RespondError(c, "Failed to load dashboard", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func (cc *CatalogController) GetMentorDashboard(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	dashboard, err := cc.Service.MentorDashboard(principal)
	if err != nil {
		return utils.RespondError(c, "Failed to load dashboard", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Dashboard retrieved successfully", dashboard)
}

func (cc *CatalogController) GetAssignedStudents(c *fiber.Ctx) error {
	principal, err := middleware.CurrentPrincipal(c)
	if err != nil {
		return utils.RespondError(c, "Unauthorized", err)
	}
	students, err := cc.Service.AssignedStudents(principal)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch assigned students", err, zap.String("user_id", principal.UserID.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Assigned students retrieved successfully", students)
}
