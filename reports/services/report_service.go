package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"
	housingrepos "study-abroad-backend/housing/repositories"
	"study-abroad-backend/reports/repositories"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PDFRenderer prints an HTML document to w.
type PDFRenderer func(ctx context.Context, html string, w io.Writer) error

type ReportService struct {
	DB        *gorm.DB
	Repo      repositories.ReportRepository
	Housing   housingrepos.HousingRepository
	RenderPDF PDFRenderer
	Now       func() time.Time
}

func NewReportService(db *gorm.DB, repo repositories.ReportRepository, housing housingrepos.HousingRepository) *ReportService {
	return &ReportService{DB: db, Repo: repo, Housing: housing, RenderPDF: utils.GenerateA4PDF, Now: time.Now}
}

var applicationHeaders = []string{"Student", "Email", "Program", "University", "Country", "Status", "Applied Date", "Scholarship Awarded"}

// ExportApplications writes every application, optionally filtered by
// status, to a spreadsheet and returns its download path.
func (s *ReportService) ExportApplications(status string) (string, error) {
	filter := models.ReviewStatus(status)
	if status != "" && !filter.Valid() {
		return "", apperrors.NewValidationError("invalid status %q", status)
	}

	rows, err := s.Repo.ApplicationsForExport(filter)
	if err != nil {
		return "", err
	}

	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		awarded := "No"
		if r.ScholarshipAwarded {
			awarded = "Yes"
		}
		data = append(data, []interface{}{
			r.StudentName, r.StudentEmail, r.ProgramTitle, r.UniversityName, r.Country,
			string(r.Status), r.AppliedDate.In(utils.DateLocation).Format("2006-01-02"), awarded,
		})
	}
	return utils.GenerateExcel("applications_report", applicationHeaders, data)
}

var occupancyHeaders = []string{"University", "Location", "Room Type", "Rent", "Available", "Occupant", "Allotment Date"}

func (s *ReportService) ExportOccupancy() (string, error) {
	rows, err := s.Housing.Occupancy()
	if err != nil {
		return "", err
	}

	data := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		available := "No"
		if r.Availability {
			available = "Yes"
		}
		occupant, allotted := "", ""
		if r.StudentName != nil {
			occupant = *r.StudentName
		}
		if r.AllotmentDate != nil {
			allotted = r.AllotmentDate.Format("2006-01-02")
		}
		data = append(data, []interface{}{
			r.UniversityName, r.Location, r.RoomType, r.Rent.StringFixed(2), available, occupant, allotted,
		})
	}
	return utils.GenerateExcel("housing_occupancy_report", occupancyHeaders, data)
}

// VisaLetter prints the approval letter of an approved visa. Students may
// only print their own.
func (s *ReportService) VisaLetter(ctx context.Context, principal models.Principal, visaID uuid.UUID) ([]byte, string, error) {
	visa, err := s.Repo.VisaWithStudent(visaID)
	if err != nil {
		return nil, "", err
	}
	if !principal.Is(models.AdminRole) && !(principal.Is(models.StudentRole) && visa.StudentID == principal.UserID) {
		return nil, "", apperrors.Forbidden("Unauthorized")
	}
	if visa.ApplicationStatus != models.StatusApproved {
		return nil, "", apperrors.Conflict(fmt.Sprintf("visa is %s, only approved visas have a letter", visa.ApplicationStatus))
	}

	data := VisaLetterData{
		PortalName: portalName,
		Reference:  reference("VISA", visa.ID.String()),
		PrintDate:  utils.FormatDate(ptr(utils.Today(s.Now()))),
		Country:    visa.Country,
		IssuedDate: utils.FormatDate(visa.IssuedDate),
		ExpiryDate: utils.FormatDate(visa.ExpiryDate),
	}
	if visa.Student != nil {
		data.StudentName = visa.Student.Name
		data.StudentEmail = visa.Student.Email
		if visa.Student.University != nil {
			data.HomeUniversity = visa.Student.University.Name
		}
	}

	pdf, err := s.print(ctx, "visa_letter.html", data)
	if err != nil {
		return nil, "", err
	}
	config.Logger.Info("Visa letter generated", zap.String("visa_id", visaID.String()), zap.String("user_id", principal.UserID.String()))
	return pdf, fmt.Sprintf("visa_letter_%s.pdf", data.Reference), nil
}

// HousingLetter prints the allotment letter of the student's active
// assignment.
func (s *ReportService) HousingLetter(ctx context.Context, principal models.Principal, studentID uuid.UUID) ([]byte, string, error) {
	if !principal.Is(models.AdminRole) && !(principal.Is(models.StudentRole) && studentID == principal.UserID) {
		return nil, "", apperrors.Forbidden("Unauthorized")
	}

	student, err := s.Repo.GetStudent(studentID)
	if err != nil {
		return nil, "", err
	}
	assignment, err := s.Housing.CurrentAssignment(studentID)
	if err != nil {
		return nil, "", err
	}
	if assignment == nil || assignment.Housing == nil {
		return nil, "", apperrors.NotFound("active housing assignment")
	}

	allotted := assignment.AllotmentDate
	data := HousingLetterData{
		PortalName:    portalName,
		Reference:     reference("HSG", assignment.ID.String()),
		PrintDate:     utils.FormatDate(ptr(utils.Today(s.Now()))),
		StudentName:   student.Name,
		Location:      assignment.Housing.Location,
		RoomType:      assignment.Housing.RoomType,
		Rent:          assignment.Housing.Rent.StringFixed(2),
		AllotmentDate: utils.FormatDate(&allotted),
	}
	if assignment.Housing.University != nil {
		data.UniversityName = assignment.Housing.University.Name
	}

	pdf, err := s.print(ctx, "housing_letter.html", data)
	if err != nil {
		return nil, "", err
	}
	config.Logger.Info("Housing letter generated", zap.String("student_id", studentID.String()), zap.String("user_id", principal.UserID.String()))
	return pdf, fmt.Sprintf("housing_letter_%s.pdf", data.Reference), nil
}

func (s *ReportService) print(ctx context.Context, name string, data interface{}) ([]byte, error) {
	html, err := renderLetter(name, data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.RenderPDF(ctx, html, &buf); err != nil {
		return nil, fmt.Errorf("failed to print %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func ptr[T any](v T) *T {
	return &v
}
