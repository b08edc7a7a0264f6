package controllers

import (
	"study-abroad-backend/catalog/requests"
	"study-abroad-backend/catalog/services"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CatalogController struct {
	Service *services.CatalogService
}

// bindRequest parses the body into req and checks its validate tags.
func bindRequest(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid request format")
	}
	return utils.ValidateStruct(req)
}

func (cc *CatalogController) CreateUniversity(c *fiber.Ctx) error {
	var req requests.CreateUniversityRequest
	if err := bindRequest(c, &req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	university, err := cc.Service.CreateUniversity(req)
	if err != nil {
		return utils.RespondError(c, "Failed to create university", err, zap.String("name", req.Name))
	}
	return utils.RespondOK(c, fiber.StatusCreated, "University created successfully", university)
}

func (cc *CatalogController) GetUniversities(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	rows, total, err := cc.Service.ListUniversities(params)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch universities", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Universities retrieved successfully",
		pagination.NewPaginatedResponse(c, rows, total, params))
}

func (cc *CatalogController) DeleteUniversity(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid university ID", err)
	}
	if err := cc.Service.DeleteUniversity(c.Context(), id); err != nil {
		return utils.RespondError(c, "Failed to delete university", err, zap.String("university_id", id.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "University deleted successfully", nil)
}

func (cc *CatalogController) CreateMentor(c *fiber.Ctx) error {
	var req requests.CreateMentorRequest
	if err := bindRequest(c, &req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	mentor, err := cc.Service.CreateMentor(req)
	if err != nil {
		return utils.RespondError(c, "Failed to create mentor", err, zap.String("email", req.Email))
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Mentor created successfully", mentor)
}

func (cc *CatalogController) GetMentors(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	rows, total, err := cc.Service.ListMentors(params)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch mentors", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Mentors retrieved successfully",
		pagination.NewPaginatedResponse(c, rows, total, params))
}

func (cc *CatalogController) DeleteMentor(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid mentor ID", err)
	}
	if err := cc.Service.DeleteMentor(c.Context(), id); err != nil {
		return utils.RespondError(c, "Failed to delete mentor", err, zap.String("mentor_id", id.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Mentor deleted successfully", nil)
}

func (cc *CatalogController) GetStudents(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	rows, total, err := cc.Service.ListStudents(params)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch students", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Students retrieved successfully",
		pagination.NewPaginatedResponse(c, rows, total, params))
}

func (cc *CatalogController) DeleteStudent(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid student ID", err)
	}
	if err := cc.Service.DeleteStudent(id); err != nil {
		return utils.RespondError(c, "Failed to delete student", err, zap.String("student_id", id.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Student deleted successfully", nil)
}

func (cc *CatalogController) CreateScholarship(c *fiber.Ctx) error {
	var req requests.CreateScholarshipRequest
	if err := bindRequest(c, &req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	scholarship, err := cc.Service.CreateScholarship(req)
	if err != nil {
		return utils.RespondError(c, "Failed to create scholarship", err, zap.String("program_id", req.ProgramID))
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Scholarship created successfully", scholarship)
}

func (cc *CatalogController) GetScholarships(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	rows, total, err := cc.Service.ListScholarships(params)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch scholarships", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Scholarships retrieved successfully",
		pagination.NewPaginatedResponse(c, rows, total, params))
}

func (cc *CatalogController) DeleteScholarship(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid scholarship ID", err)
	}
	if err := cc.Service.DeleteScholarship(id); err != nil {
		return utils.RespondError(c, "Failed to delete scholarship", err, zap.String("scholarship_id", id.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Scholarship deleted successfully", nil)
}

func (cc *CatalogController) CreateHousing(c *fiber.Ctx) error {
	var req requests.CreateHousingRequest
	if err := bindRequest(c, &req); err != nil {
		return utils.RespondError(c, "Invalid request", err)
	}
	housing, err := cc.Service.CreateHousing(req)
	if err != nil {
		return utils.RespondError(c, "Failed to create housing listing", err, zap.String("university_id", req.UniversityID))
	}
	return utils.RespondOK(c, fiber.StatusCreated, "Housing listing created successfully", housing)
}

func (cc *CatalogController) GetHousing(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	rows, total, err := cc.Service.ListHousing(params)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch housing listings", err)
	}
	return utils.RespondOK(c, fiber.StatusOK, "Housing listings retrieved successfully",
		pagination.NewPaginatedResponse(c, rows, total, params))
}

func (cc *CatalogController) DeleteHousing(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		return utils.RespondError(c, "Invalid housing ID", err)
	}
	if err := cc.Service.DeleteHousing(id); err != nil {
		return utils.RespondError(c, "Failed to delete housing listing", err, zap.String("housing_id", id.String()))
	}
	return utils.RespondOK(c, fiber.StatusOK, "Housing listing deleted successfully", nil)
}
