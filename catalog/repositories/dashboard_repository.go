package repositories

import (
	"study-abroad-backend/db/models"
	"study-abroad-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminCounts struct {
	Students            int64 `json:"students"`
	Mentors             int64 `json:"mentors"`
	Programs            int64 `json:"programs"`
	Applications        int64 `json:"applications"`
	PendingApplications int64 `json:"pending_applications"`
	PendingDocuments    int64 `json:"pending_documents"`
	PendingVisas        int64 `json:"pending_visas"`
	PendingHousing      int64 `json:"pending_housing_requests"`
	AvailableHousing    int64 `json:"available_housing"`
	Scholarships        int64 `json:"scholarships"`
}

type StudentCounts struct {
	Applications         int64 `json:"applications"`
	ApprovedApplications int64 `json:"approved_applications"`
	PendingDocuments     int64 `json:"pending_documents"`
	ScholarshipsAwarded  int64 `json:"scholarships_awarded"`
}

type MentorCounts struct {
	Programs         int64 `json:"programs"`
	Applicants       int64 `json:"applicants"`
	PendingReviews   int64 `json:"pending_reviews"`
	PendingDocuments int64 `json:"pending_documents"`
}

// AssignedStudent is a student who applied to one of a mentor's programs.
type AssignedStudent struct {
	StudentID     uuid.UUID           `json:"student_id"`
	StudentName   string              `json:"student_name"`
	StudentEmail  string              `json:"student_email"`
	Department    string              `json:"department"`
	ApplicationID uuid.UUID           `json:"application_id"`
	ProgramTitle  string              `json:"program_title"`
	Status        models.ReviewStatus `json:"status"`
}

func (r *catalogRepository) AdminCounts() (*AdminCounts, error) {
	counts := &AdminCounts{}
	queries := []struct {
		target *int64
		model  interface{}
		where  string
		args   []interface{}
	}{
		{&counts.Students, &models.Student{}, "", nil},
		{&counts.Mentors, &models.Mentor{}, "", nil},
		{&counts.Programs, &models.Program{}, "", nil},
		{&counts.Applications, &models.Application{}, "", nil},
		{&counts.PendingApplications, &models.Application{}, "status = ?", []interface{}{models.StatusPending}},
		{&counts.PendingDocuments, &models.ApplicationDocument{}, "status = ?", []interface{}{models.StatusPending}},
		{&counts.PendingVisas, &models.VisaPermit{}, "application_status = ?", []interface{}{models.StatusPending}},
		{&counts.PendingHousing, &models.HousingRequest{}, "status = ?", []interface{}{models.StatusPending}},
		{&counts.AvailableHousing, &models.Housing{}, "availability = ?", []interface{}{true}},
		{&counts.Scholarships, &models.Scholarship{}, "", nil},
	}

	counters := make([]func() error, 0, len(queries))
	for _, q := range queries {
		q := q
		counters = append(counters, func() error {
			query := r.DB.Model(q.model)
			if q.where != "" {
				query = query.Where(q.where, q.args...)
			}
			return query.Count(q.target).Error
		})
	}
	if err := utils.ExecuteParallel(counters...); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *catalogRepository) StudentCounts(studentID uuid.UUID) (*StudentCounts, error) {
	counts := &StudentCounts{}
	apps := r.DB.Model(&models.Application{}).Where("student_id = ?", studentID)
	if err := apps.Count(&counts.Applications).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&models.Application{}).
		Where("student_id = ? AND status = ?", studentID, models.StatusApproved).
		Count(&counts.ApprovedApplications).Error; err != nil {
		return nil, err
	}
	if err := r.DB.Model(&models.Application{}).
		Where("student_id = ? AND scholarship_awarded = ?", studentID, true).
		Count(&counts.ScholarshipsAwarded).Error; err != nil {
		return nil, err
	}
	err := r.DB.Model(&models.ApplicationDocument{}).
		Joins("JOIN applications ON applications.id = application_documents.application_id").
		Where("applications.student_id = ? AND application_documents.status = ?", studentID, models.StatusPending).
		Count(&counts.PendingDocuments).Error
	return counts, err
}

func (r *catalogRepository) MentorCounts(mentorID uuid.UUID) (*MentorCounts, error) {
	counts := &MentorCounts{}
	if err := r.DB.Model(&models.Program{}).Where("mentor_id = ?", mentorID).Count(&counts.Programs).Error; err != nil {
		return nil, err
	}

	applicants := func() *gorm.DB {
		return r.DB.Model(&models.Application{}).
			Joins("JOIN programs ON programs.id = applications.program_id").
			Where("programs.mentor_id = ?", mentorID)
	}
	if err := applicants().Distinct("applications.student_id").Count(&counts.Applicants).Error; err != nil {
		return nil, err
	}
	if err := applicants().Where("applications.status = ?", models.StatusPending).Count(&counts.PendingReviews).Error; err != nil {
		return nil, err
	}
	err := r.DB.Model(&models.ApplicationDocument{}).
		Joins("JOIN applications ON applications.id = application_documents.application_id").
		Joins("JOIN programs ON programs.id = applications.program_id").
		Where("programs.mentor_id = ? AND application_documents.status = ?", mentorID, models.StatusPending).
		Count(&counts.PendingDocuments).Error
	return counts, err
}

func (r *catalogRepository) AssignedStudents(mentorID uuid.UUID) ([]AssignedStudent, error) {
	var rows []AssignedStudent
	err := r.DB.Table("applications").
		Select(`students.id AS student_id, students.name AS student_name, students.email AS student_email,
			students.department AS department, applications.id AS application_id,
			programs.title AS program_title, applications.status AS status`).
		Joins("JOIN students ON students.id = applications.student_id").
		Joins("JOIN programs ON programs.id = applications.program_id").
		Where("programs.mentor_id = ?", mentorID).
		Order("students.name ASC, programs.title ASC").
		Scan(&rows).Error
	return rows, err
}
