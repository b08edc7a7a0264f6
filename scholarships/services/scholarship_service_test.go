package services

import (
	"context"
	"errors"
	"testing"

	"study-abroad-backend/db/models"
	"study-abroad-backend/internal/testdb"
	"study-abroad-backend/notifications"
	"study-abroad-backend/scholarships/repositories"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*ScholarshipService, *gorm.DB, *notifications.Recorder) {
	t.Helper()
	db := testdb.Open(t)
	recorder := &notifications.Recorder{}
	return NewScholarshipService(db, repositories.NewScholarshipRepository(db), recorder), db, recorder
}

func TestApplyScholarship(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	application := testdb.Application(t, db, campus.Student.ID, campus.Program.ID)
	scholarship := testdb.Scholarship(t, db, campus.Program.ID, "Merit Award", 2000)
	student := testdb.AsStudent(campus.Student)

	first, created, err := svc.Apply(context.Background(), student, application.ID, scholarship.ID)
	if err != nil || !created {
		t.Fatalf("apply: created=%v err=%v", created, err)
	}
	second, created, err := svc.Apply(context.Background(), student, application.ID, scholarship.ID)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if created || second.ID != first.ID {
		t.Fatal("second apply must return the existing request")
	}

	rows, err := svc.List(student, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ScholarshipName != "Merit Award" || !rows[0].Amount.Equal(scholarship.Amount) {
		t.Fatalf("unexpected listing %+v", rows)
	}
}

func TestApplyScholarshipRejections(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	application := testdb.Application(t, db, campus.Student.ID, campus.Program.ID)
	otherProgram := testdb.Program(t, db, "Art History", campus.University.ID, nil)
	foreign := testdb.Scholarship(t, db, otherProgram.ID, "Arts Grant", 500)
	ctx := context.Background()

	_, _, err := svc.Apply(ctx, testdb.AsStudent(campus.Student), application.ID, foreign.ID)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for scholarship of another program, got %v", err)
	}

	intruder := testdb.Student(t, db, "intruder")
	own := testdb.Scholarship(t, db, campus.Program.ID, "Merit Award", 2000)
	_, _, err = svc.Apply(ctx, testdb.AsStudent(intruder), application.ID, own.ID)
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	_, _, err = svc.Apply(ctx, testdb.AsStudent(campus.Student), application.ID, uuid.New())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDecideScholarshipApproveAwards(t *testing.T) {
	svc, db, recorder := newService(t)
	campus := testdb.NewCampus(t, db)
	application := testdb.Application(t, db, campus.Student.ID, campus.Program.ID)
	scholarship := testdb.Scholarship(t, db, campus.Program.ID, "Merit Award", 2000)
	ctx := context.Background()

	schApp, _, err := svc.Apply(ctx, testdb.AsStudent(campus.Student), application.ID, scholarship.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	stranger := testdb.Mentor(t, db, "stranger")
	if _, err := svc.Decide(ctx, testdb.AsMentor(stranger), schApp.ID, models.DecisionApprove); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	decided, err := svc.Decide(ctx, testdb.AsMentor(campus.Mentor), schApp.ID, models.DecisionApprove)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != models.StatusApproved {
		t.Fatalf("expected Approved, got %s", decided.Status)
	}

	var stored models.Application
	db.First(&stored, "id = ?", application.ID)
	if !stored.ScholarshipAwarded {
		t.Fatal("approval must flag the application as awarded")
	}
	if stored.Status != models.StatusPending {
		t.Fatalf("application status must not change, got %s", stored.Status)
	}

	if _, err := svc.Decide(ctx, testdb.AsAdmin(), schApp.ID, models.DecisionReject); !errors.Is(err, apperrors.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	if len(recorder.Decisions) != 1 {
		t.Fatalf("expected one notification, got %d", len(recorder.Decisions))
	}
}

func TestDecideScholarshipRejectLeavesAwardUnset(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	application := testdb.Application(t, db, campus.Student.ID, campus.Program.ID)
	scholarship := testdb.Scholarship(t, db, campus.Program.ID, "Merit Award", 2000)
	ctx := context.Background()

	schApp, _, err := svc.Apply(ctx, testdb.AsStudent(campus.Student), application.ID, scholarship.ID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := svc.Decide(ctx, testdb.AsAdmin(), schApp.ID, models.DecisionReject); err != nil {
		t.Fatalf("reject: %v", err)
	}

	var stored models.Application
	db.First(&stored, "id = ?", application.ID)
	if stored.ScholarshipAwarded {
		t.Fatal("rejection must not award")
	}

	if _, err := svc.Decide(ctx, testdb.AsAdmin(), uuid.New(), models.DecisionReject); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	queue, err := svc.List(testdb.AsMentor(campus.Mentor), string(models.StatusRejected))
	if err != nil || len(queue) != 1 {
		t.Fatalf("mentor queue: %d rows (%v)", len(queue), err)
	}
}

func TestAvailableForRestrictsMentorsToTheirPrograms(t *testing.T) {
	svc, db, _ := newService(t)
	campus := testdb.NewCampus(t, db)
	application := testdb.Application(t, db, campus.Student.ID, campus.Program.ID)
	testdb.Scholarship(t, db, campus.Program.ID, "Merit Award", 2000)

	stranger := testdb.Mentor(t, db, "stranger")
	if _, err := svc.AvailableFor(testdb.AsMentor(stranger), application.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for an unrelated mentor, got %v", err)
	}
	intruder := testdb.Student(t, db, "intruder")
	if _, err := svc.AvailableFor(testdb.AsStudent(intruder), application.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for another student, got %v", err)
	}

	for name, principal := range map[string]models.Principal{
		"owner":  testdb.AsStudent(campus.Student),
		"mentor": testdb.AsMentor(campus.Mentor),
		"admin":  testdb.AsAdmin(),
	} {
		scholarships, err := svc.AvailableFor(principal, application.ID)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(scholarships) != 1 || scholarships[0].Name != "Merit Award" {
			t.Fatalf("%s: unexpected scholarships %+v", name, scholarships)
		}
	}
}
