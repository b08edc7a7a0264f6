package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"study-abroad-backend/db/models"
	"study-abroad-backend/internal/testdb"
	"study-abroad-backend/notifications"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"
	"study-abroad-backend/visas/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var decisionDay = time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*VisaService, *gorm.DB, *notifications.Recorder) {
	t.Helper()
	db := testdb.Open(t)
	recorder := &notifications.Recorder{}
	svc := NewVisaService(db, repositories.NewVisaRepository(db), recorder)
	svc.Now = func() time.Time { return decisionDay }
	return svc, db, recorder
}

func TestNormalizeCountry(t *testing.T) {
	cases := map[string]string{
		"  Japan ":         "Japan",
		"United   Kingdom": "United Kingdom",
		"USA":              "USA",
		"":                 "",
	}
	for in, want := range cases {
		if got := NormalizeCountry(in); got != want {
			t.Fatalf("NormalizeCountry(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEligibleCountriesOnlyWithPrograms(t *testing.T) {
	svc, db, _ := newService(t)
	testdb.NewCampus(t, db)
	testdb.University(t, db, "Empty College", "Chile")
	second := testdb.University(t, db, "Osaka University", "Japan")
	testdb.Program(t, db, "Design", second.ID, nil)

	countries, err := svc.EligibleCountries()
	if err != nil {
		t.Fatalf("eligible countries: %v", err)
	}
	if len(countries) != 1 || countries[0] != "Japan" {
		t.Fatalf("expected [Japan], got %v", countries)
	}
}

func TestRequestVisaKeepsCatalogSpelling(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	usa := testdb.University(t, db, "MIT", "USA")
	testdb.Program(t, db, "Aero", usa.ID, nil)
	ivory := testdb.University(t, db, "Universite Felix Houphouet-Boigny", "Côte d'Ivoire")
	testdb.Program(t, db, "Agronomy", ivory.ID, nil)
	student := testdb.AsStudent(campus.Student)
	ctx := context.Background()

	countries, err := svc.EligibleCountries()
	if err != nil {
		t.Fatalf("eligible countries: %v", err)
	}
	want := map[string]bool{"Japan": true, "USA": true, "Côte d'Ivoire": true}
	if len(countries) != len(want) {
		t.Fatalf("expected %d countries, got %v", len(want), countries)
	}
	for _, c := range countries {
		if !want[c] {
			t.Fatalf("unexpected country spelling %q in %v", c, countries)
		}
	}

	for requested, stored := range map[string]string{
		"usa":             "USA",
		" USA ":           "USA",
		"CÔTE D'IVOIRE":   "Côte d'Ivoire",
		"côte   d'ivoire": "Côte d'Ivoire",
	} {
		visa, err := svc.Request(ctx, student, requested)
		if err != nil {
			t.Fatalf("request %q: %v", requested, err)
		}
		if visa.Country != stored {
			t.Fatalf("request %q stored %q, want %q", requested, visa.Country, stored)
		}
	}
}

func TestRequestVisa(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	student := testdb.AsStudent(campus.Student)
	ctx := context.Background()

	visa, err := svc.Request(ctx, student, "  jAPAN ")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if visa.Country != "Japan" || visa.ApplicationStatus != models.StatusPending {
		t.Fatalf("unexpected visa %+v", visa)
	}

	if _, err := svc.Request(ctx, student, "Mars"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Request(ctx, testdb.AsMentor(campus.Mentor), "Japan"); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if _, err := svc.Request(ctx, student, "japan"); err != nil {
		t.Fatalf("second request: %v", err)
	}
	history, err := svc.History(student)
	if err != nil || len(history) != 2 {
		t.Fatalf("expected two visas in history, got %d (%v)", len(history), err)
	}
}

func TestDecideVisaApproveSetsDates(t *testing.T) {
	svc, db, recorder := newService(t)
	campus := testdb.NewCampus(t, db)
	ctx := context.Background()

	visa, err := svc.Request(ctx, testdb.AsStudent(campus.Student), "Japan")
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := svc.Decide(ctx, testdb.AsMentor(campus.Mentor), visa.ID, models.DecisionApprove); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("visas are admin-only, got %v", err)
	}

	decided, err := svc.Decide(ctx, testdb.AsAdmin(), visa.ID, models.DecisionApprove)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if utils.FormatDate(decided.IssuedDate) != "2026-02-10" {
		t.Fatalf("issued date = %s", utils.FormatDate(decided.IssuedDate))
	}
	if utils.FormatDate(decided.ExpiryDate) != "2027-02-10" {
		t.Fatalf("expiry date = %s", utils.FormatDate(decided.ExpiryDate))
	}

	var stored models.VisaPermit
	db.First(&stored, "id = ?", visa.ID)
	if stored.ApplicationStatus != models.StatusApproved || utils.FormatDate(stored.ExpiryDate) != "2027-02-10" {
		t.Fatalf("decision not persisted: %+v", stored)
	}

	if _, err := svc.Decide(ctx, testdb.AsAdmin(), visa.ID, models.DecisionReject); !errors.Is(err, apperrors.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	if event, ok := recorder.Last(); !ok || event.RecipientID != campus.Student.ID {
		t.Fatalf("unexpected notification %+v", event)
	}
}

func TestDecideVisaRejectLeavesDatesEmpty(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	ctx := context.Background()

	visa, err := svc.Request(ctx, testdb.AsStudent(campus.Student), "Japan")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	decided, err := svc.Decide(ctx, testdb.AsAdmin(), visa.ID, models.DecisionReject)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if decided.IssuedDate != nil || decided.ExpiryDate != nil {
		t.Fatal("rejected visa must not carry dates")
	}

	if _, err := svc.Decide(ctx, testdb.AsAdmin(), uuid.New(), models.DecisionApprove); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSendExpiryReminders(t *testing.T) {
	svc, db, recorder := newService(t)
	campus := testdb.NewCampus(t, db)
	today := utils.Today(decisionDay)

	soon := utils.AddDays(today, 10)
	later := utils.AddDays(today, 90)
	issued := utils.AddDays(today, -355)
	for _, expiry := range []models.VisaPermit{
		{StudentID: campus.Student.ID, Country: "Japan", ApplicationStatus: models.StatusApproved, IssuedDate: &issued, ExpiryDate: &soon},
		{StudentID: campus.Student.ID, Country: "Japan", ApplicationStatus: models.StatusApproved, IssuedDate: &issued, ExpiryDate: &later},
		{StudentID: campus.Student.ID, Country: "Japan", ApplicationStatus: models.StatusPending},
	} {
		v := expiry
		if err := db.Create(&v).Error; err != nil {
			t.Fatalf("seed visa: %v", err)
		}
	}

	sent, err := svc.SendExpiryReminders(context.Background(), 30)
	if err != nil {
		t.Fatalf("reminders: %v", err)
	}
	if sent != 1 || len(recorder.Reminders) != 1 {
		t.Fatalf("expected one reminder, got sent=%d recorded=%d", sent, len(recorder.Reminders))
	}
	if recorder.Reminders[0].DaysLeft != 10 || recorder.Reminders[0].ExpiryDate != utils.FormatDate(&soon) {
		t.Fatalf("unexpected reminder %+v", recorder.Reminders[0])
	}
}
