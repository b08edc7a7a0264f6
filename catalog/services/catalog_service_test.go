package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	authrepos "study-abroad-backend/auth/repositories"
	"study-abroad-backend/catalog/repositories"
	"study-abroad-backend/catalog/requests"
	"study-abroad-backend/db/models"
	"study-abroad-backend/internal/testdb"
	"study-abroad-backend/search"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/utils/pagination"

	"gorm.io/gorm"
)

func newService(t *testing.T) (*CatalogService, *gorm.DB, *search.BleveIndex) {
	t.Helper()
	db := testdb.Open(t)
	idx, err := search.NewBleveIndex("")
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return NewCatalogService(db, repositories.NewCatalogRepository(db), authrepos.NewAccountRepository(db), idx, nil), db, idx
}

func firstPage() pagination.PaginationParams {
	return pagination.PaginationParams{Page: 1, PageSize: 20, Filters: map[string]string{}}
}

func TestCreateProgramIsSearchable(t *testing.T) {
	svc, db, _ := newService(t)
	ctx := context.Background()
	campus := testdb.NewCampus(t, db)

	program, err := svc.CreateProgram(ctx, requests.CreateProgramRequest{
		Title:        "Marine Biology Semester",
		Description:  "Field work on coral reefs",
		UniversityID: campus.University.ID.String(),
		MentorID:     campus.Mentor.ID.String(),
		StartDate:    "2027-02-01",
		EndDate:      "2027-06-30",
	})
	if err != nil {
		t.Fatalf("create program: %v", err)
	}

	found, err := svc.SearchPrograms(ctx, "coral", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != program.ID {
		t.Fatalf("expected the new program, got %+v", found)
	}
	if found[0].UniversityName != "Kyoto University" || found[0].MentorName == nil {
		t.Fatalf("search result not joined with university and mentor: %+v", found[0])
	}

	if err := svc.DeleteProgram(ctx, program.ID); err != nil {
		t.Fatalf("delete program: %v", err)
	}
	found, _ = svc.SearchPrograms(ctx, "coral", 10)
	if len(found) != 0 {
		t.Fatalf("deleted program still searchable: %+v", found)
	}
	if err := svc.DeleteProgram(ctx, program.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCreateProgramValidation(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	ctx := context.Background()

	_, err := svc.CreateProgram(ctx, requests.CreateProgramRequest{
		Title:        "Backwards",
		UniversityID: campus.University.ID.String(),
		StartDate:    "2027-06-30",
		EndDate:      "2027-02-01",
	})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for inverted dates, got %v", err)
	}

	_, err = svc.CreateProgram(ctx, requests.CreateProgramRequest{
		Title:        "Orphan",
		UniversityID: campus.Student.ID.String(),
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected unknown university, got %v", err)
	}
}

func TestCreateMentorEmailUniqueAcrossRoles(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)

	_, err := svc.CreateMentor(requests.CreateMentorRequest{
		Name:     "Copycat",
		Email:    strings.ToUpper(campus.Student.Email),
		Password: "Passw0rdOK",
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict for an email used by a student, got %v", err)
	}

	_, err = svc.CreateMentor(requests.CreateMentorRequest{Name: "Weak", Email: "weak@mentors.test", Password: "short"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected weak password to be rejected, got %v", err)
	}

	mentor, err := svc.CreateMentor(requests.CreateMentorRequest{
		Name:         "Hiro",
		Email:        " Hiro@Mentors.test ",
		Password:     "Passw0rdOK",
		UniversityID: campus.University.ID.String(),
	})
	if err != nil {
		t.Fatalf("create mentor: %v", err)
	}
	if mentor.Email != "hiro@mentors.test" || mentor.Password == "Passw0rdOK" {
		t.Fatalf("mentor email not normalised or password not hashed: %+v", mentor)
	}
}

func TestDeleteMentorKeepsPrograms(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)

	if err := svc.DeleteMentor(context.Background(), campus.Mentor.ID); err != nil {
		t.Fatalf("delete mentor: %v", err)
	}
	var program models.Program
	if err := db.First(&program, "id = ?", campus.Program.ID).Error; err != nil {
		t.Fatalf("program should survive its mentor: %v", err)
	}
	if program.MentorID != nil {
		t.Fatalf("program still points at deleted mentor")
	}
}

func TestDeleteUniversityRemovesProgramsFromIndex(t *testing.T) {
	svc, db, idx := newService(t)
	ctx := context.Background()
	campus := testdb.NewCampus(t, db)
	if err := search.Reindex(ctx, db, idx); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	if err := svc.DeleteUniversity(ctx, campus.University.ID); err != nil {
		t.Fatalf("delete university: %v", err)
	}
	hits, _ := idx.SearchPrograms(ctx, "robotics", 10)
	if len(hits) != 0 {
		t.Fatalf("programs of a deleted university are still indexed: %+v", hits)
	}
	var count int64
	db.Model(&models.Program{}).Count(&count)
	if count != 0 {
		t.Fatalf("programs should cascade with the university, %d left", count)
	}
}

func TestDeleteHousingRefusesOccupiedRoom(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	room := testdb.Housing(t, db, campus.University.ID, "North Hall 1", time.Now())
	db.Model(&models.Housing{}).Where("id = ?", room.ID).Update("availability", false)

	if err := svc.DeleteHousing(room.ID); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict for an occupied room, got %v", err)
	}

	db.Model(&models.Housing{}).Where("id = ?", room.ID).Update("availability", true)
	if err := svc.DeleteHousing(room.ID); err != nil {
		t.Fatalf("delete free room: %v", err)
	}
}

func TestScholarshipAndHousingAmounts(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)

	_, err := svc.CreateScholarship(requests.CreateScholarshipRequest{ProgramID: campus.Program.ID.String(), Name: "Merit", Amount: "-5"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected negative amount to be rejected, got %v", err)
	}
	sch, err := svc.CreateScholarship(requests.CreateScholarshipRequest{ProgramID: campus.Program.ID.String(), Name: "Merit", Amount: "2500.50"})
	if err != nil {
		t.Fatalf("create scholarship: %v", err)
	}
	if sch.Amount.StringFixed(2) != "2500.50" {
		t.Fatalf("unexpected amount %s", sch.Amount)
	}

	_, err = svc.CreateHousing(requests.CreateHousingRequest{UniversityID: campus.University.ID.String(), Location: "East", RoomType: "single", Rent: "abc"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected invalid rent to be rejected, got %v", err)
	}
	housing, err := svc.CreateHousing(requests.CreateHousingRequest{UniversityID: campus.University.ID.String(), Location: "East", RoomType: "single", Rent: "420"})
	if err != nil || !housing.Availability {
		t.Fatalf("new housing must be available: %+v (%v)", housing, err)
	}

	rows, total, err := svc.ListHousing(firstPage())
	if err != nil || total != 1 || rows[0].UniversityName != "Kyoto University" {
		t.Fatalf("unexpected housing listing %+v total=%d err=%v", rows, total, err)
	}
}

func TestProgramDetailIncludesRequirements(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	testdb.Scholarship(t, db, campus.Program.ID, "Merit", 1000)

	if _, err := svc.AddRequiredDocument(campus.Program.ID, requests.AddRequiredDocumentRequest{DocumentName: "Transcript"}); err != nil {
		t.Fatalf("add required document: %v", err)
	}
	if _, err := svc.AddRequiredDocument(campus.Program.ID, requests.AddRequiredDocumentRequest{DocumentName: "Passport"}); err != nil {
		t.Fatalf("add required document: %v", err)
	}

	detail, err := svc.ProgramDetail(campus.Program.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(detail.RequiredDocuments) != 2 || detail.RequiredDocuments[0].DocumentName != "Passport" {
		t.Fatalf("required documents not loaded in name order: %+v", detail.RequiredDocuments)
	}
	if len(detail.Scholarships) != 1 || detail.University.Name != "Kyoto University" {
		t.Fatalf("detail missing scholarships or university: %+v", detail)
	}

	if err := svc.DeleteRequiredDocument(campus.Student.ID, detail.RequiredDocuments[0].ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("deleting through another program must be not found, got %v", err)
	}
}

func TestDashboards(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	testdb.Application(t, db, campus.Student.ID, campus.Program.ID)
	testdb.Housing(t, db, campus.University.ID, "North Hall 1", time.Now())

	admin, err := svc.AdminDashboard(context.Background())
	if err != nil {
		t.Fatalf("admin dashboard: %v", err)
	}
	if admin.Students != 1 || admin.Mentors != 1 || admin.Programs != 1 || admin.PendingApplications != 1 || admin.AvailableHousing != 1 {
		t.Fatalf("unexpected admin counts %+v", admin)
	}

	mentor, err := svc.MentorDashboard(testdb.AsMentor(campus.Mentor))
	if err != nil {
		t.Fatalf("mentor dashboard: %v", err)
	}
	if mentor.Counts.Programs != 1 || mentor.Counts.Applicants != 1 || mentor.Counts.PendingReviews != 1 {
		t.Fatalf("unexpected mentor counts %+v", mentor.Counts)
	}

	student, err := svc.StudentDashboard(testdb.AsStudent(campus.Student))
	if err != nil || student.Counts.Applications != 1 {
		t.Fatalf("unexpected student dashboard %+v (%v)", student, err)
	}

	assigned, err := svc.AssignedStudents(testdb.AsMentor(campus.Mentor))
	if err != nil || len(assigned) != 1 || assigned[0].StudentID != campus.Student.ID {
		t.Fatalf("unexpected assigned students %+v (%v)", assigned, err)
	}

	if _, err := svc.MentorDashboard(testdb.AsStudent(campus.Student)); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("student must not open a mentor dashboard, got %v", err)
	}
}
