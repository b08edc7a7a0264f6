package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"study-abroad-backend/db/models"
	housingrepos "study-abroad-backend/housing/repositories"
	"study-abroad-backend/internal/testdb"
	"study-abroad-backend/reports/repositories"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var printDay = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

// newService renders letters as their HTML so tests can inspect the content.
func newService(t *testing.T) (*ReportService, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	svc := NewReportService(db, repositories.NewReportRepository(db), housingrepos.NewHousingRepository(db))
	svc.Now = func() time.Time { return printDay }
	svc.RenderPDF = func(_ context.Context, html string, w io.Writer) error {
		_, err := io.WriteString(w, html)
		return err
	}
	return svc, db
}

func date(y int, m time.Month, d int) *datatypes.Date {
	v := datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &v
}

func readSheet(t *testing.T, link string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(filepath.Join(utils.ExportDir, filepath.Base(link)))
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	return rows
}

func TestExportApplications(t *testing.T) {
	utils.ExportDir = t.TempDir()
	svc, db := newService(t)
	campus := testdb.NewCampus(t, db)
	testdb.Application(t, db, campus.Student.ID, campus.Program.ID)

	link, err := svc.ExportApplications("")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(link, "/public/files/applications_report_") {
		t.Fatalf("unexpected link %s", link)
	}
	rows := readSheet(t, link)
	if len(rows) != 2 || rows[0][0] != "Student" || rows[1][2] != "Robotics Exchange" || rows[1][5] != "Pending" {
		t.Fatalf("unexpected sheet %v", rows)
	}

	if _, err := svc.ExportApplications("Lost"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestExportOccupancy(t *testing.T) {
	utils.ExportDir = t.TempDir()
	svc, db := newService(t)
	campus := testdb.NewCampus(t, db)
	testdb.Housing(t, db, campus.University.ID, "North Hall 1", time.Now())

	link, err := svc.ExportOccupancy()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rows := readSheet(t, link)
	if len(rows) != 2 || rows[1][1] != "North Hall 1" || rows[1][3] != "500.00" || rows[1][4] != "Yes" {
		t.Fatalf("unexpected sheet %v", rows)
	}
}

func TestVisaLetter(t *testing.T) {
	svc, db := newService(t)
	campus := testdb.NewCampus(t, db)
	ctx := context.Background()

	visa := models.VisaPermit{
		StudentID:         campus.Student.ID,
		Country:           "Japan",
		ApplicationStatus: models.StatusApproved,
		IssuedDate:        date(2026, 9, 1),
		ExpiryDate:        date(2027, 9, 1),
	}
	if err := db.Create(&visa).Error; err != nil {
		t.Fatalf("create visa: %v", err)
	}

	pdf, name, err := svc.VisaLetter(ctx, testdb.AsStudent(campus.Student), visa.ID)
	if err != nil {
		t.Fatalf("visa letter: %v", err)
	}
	html := string(pdf)
	for _, want := range []string{"Japan", "2026-09-01", "2027-09-01", "2026-10-19", campus.Student.Name} {
		if !strings.Contains(html, want) {
			t.Errorf("letter is missing %q", want)
		}
	}
	if !strings.HasPrefix(name, "visa_letter_VISA-") || !strings.HasSuffix(name, ".pdf") {
		t.Fatalf("unexpected file name %s", name)
	}

	other := testdb.Student(t, db, "other")
	if _, _, err := svc.VisaLetter(ctx, testdb.AsStudent(other), visa.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected forbidden for another student, got %v", err)
	}
	if _, _, err := svc.VisaLetter(ctx, testdb.AsAdmin(), visa.ID); err != nil {
		t.Fatalf("admin should print any letter: %v", err)
	}

	pending := models.VisaPermit{StudentID: campus.Student.ID, Country: "Japan", ApplicationStatus: models.StatusPending}
	db.Create(&pending)
	if _, _, err := svc.VisaLetter(ctx, testdb.AsStudent(campus.Student), pending.ID); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict for a pending visa, got %v", err)
	}
}

func TestHousingLetter(t *testing.T) {
	svc, db := newService(t)
	campus := testdb.NewCampus(t, db)
	ctx := context.Background()

	if _, _, err := svc.HousingLetter(ctx, testdb.AsStudent(campus.Student), campus.Student.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found without an assignment, got %v", err)
	}

	room := testdb.Housing(t, db, campus.University.ID, "North Hall 1", time.Now())
	db.Model(&models.Housing{}).Where("id = ?", room.ID).Update("availability", false)
	assignment := models.HousingAssignment{StudentID: campus.Student.ID, HousingID: room.ID, AllotmentDate: *date(2026, 9, 1)}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("create assignment: %v", err)
	}

	pdf, _, err := svc.HousingLetter(ctx, testdb.AsStudent(campus.Student), campus.Student.ID)
	if err != nil {
		t.Fatalf("housing letter: %v", err)
	}
	html := string(pdf)
	for _, want := range []string{"North Hall 1", "Kyoto University", "500.00", "2026-09-01"} {
		if !strings.Contains(html, want) {
			t.Errorf("letter is missing %q", want)
		}
	}

	if _, _, err := svc.HousingLetter(ctx, testdb.AsMentor(campus.Mentor), campus.Student.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected forbidden for a mentor, got %v", err)
	}
}
