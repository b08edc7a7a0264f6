package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"study-abroad-backend/db/models"
	"study-abroad-backend/housing/repositories"
	"study-abroad-backend/internal/testdb"
	"study-abroad-backend/notifications"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var allotmentDay = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*HousingService, *gorm.DB, *notifications.Recorder) {
	t.Helper()
	db := testdb.Open(t)
	recorder := &notifications.Recorder{}
	svc := NewHousingService(db, repositories.NewHousingRepository(db), recorder)
	svc.Now = func() time.Time { return allotmentDay }
	return svc, db, recorder
}

func request(t *testing.T, svc *HousingService, student models.Student, kind models.HousingRequestType) *models.HousingRequest {
	t.Helper()
	req, _, err := svc.Request(context.Background(), testdb.AsStudent(student), kind)
	if err != nil {
		t.Fatalf("request %s: %v", kind, err)
	}
	return req
}

func decide(t *testing.T, svc *HousingService, req *models.HousingRequest, decision models.Decision) *DecisionResult {
	t.Helper()
	result, err := svc.Decide(context.Background(), testdb.AsAdmin(), req.ID, decision)
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	return result
}

func availability(t *testing.T, db *gorm.DB, housingID uuid.UUID) bool {
	t.Helper()
	var h models.Housing
	if err := db.First(&h, "id = ?", housingID).Error; err != nil {
		t.Fatalf("load housing: %v", err)
	}
	return h.Availability
}

func TestRequestHousingDeduplicatesPending(t *testing.T) {
	svc, db, _ := newService(t)
	student := testdb.Student(t, db, "asha")
	ctx := context.Background()

	first, created, err := svc.Request(ctx, testdb.AsStudent(student), models.HousingApply)
	if err != nil || !created {
		t.Fatalf("first request: created=%v err=%v", created, err)
	}
	second, created, err := svc.Request(ctx, testdb.AsStudent(student), models.HousingApply)
	if err != nil || created || second.ID != first.ID {
		t.Fatalf("duplicate pending request must return the existing one")
	}

	if _, created, _ := svc.Request(ctx, testdb.AsStudent(student), models.HousingVacate); !created {
		t.Fatal("a vacate request is a different type and must be created")
	}
	if _, _, err := svc.Request(ctx, testdb.AsStudent(student), "swap"); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOneRoomTwoApplicants(t *testing.T) {
	svc, db, recorder := newService(t)
	university := testdb.University(t, db, "Kyoto University", "Japan")
	room := testdb.Housing(t, db, university.ID, "North Hall", allotmentDay.Add(-48*time.Hour))
	first := testdb.Student(t, db, "first")
	second := testdb.Student(t, db, "second")

	reqA := request(t, svc, first, models.HousingApply)
	reqB := request(t, svc, second, models.HousingApply)

	resultA := decide(t, svc, reqA, models.DecisionApprove)
	if resultA.Outcome != OutcomeAssigned || resultA.Request.Status != models.StatusApproved {
		t.Fatalf("first applicant: %+v", resultA)
	}
	if resultA.Assignment.HousingID != room.ID {
		t.Fatalf("expected room %s, got %s", room.ID, resultA.Assignment.HousingID)
	}
	if utils.FormatDate(&resultA.Assignment.AllotmentDate) != "2026-09-01" {
		t.Fatalf("allotment date = %s", utils.FormatDate(&resultA.Assignment.AllotmentDate))
	}
	if availability(t, db, room.ID) {
		t.Fatal("claimed room must be unavailable")
	}

	resultB := decide(t, svc, reqB, models.DecisionApprove)
	if resultB.Outcome != OutcomeNoCapacity || resultB.Request.Status != models.StatusRejected {
		t.Fatalf("second applicant: %+v", resultB)
	}

	var assignments int64
	db.Model(&models.HousingAssignment{}).Count(&assignments)
	if assignments != 1 {
		t.Fatalf("expected exactly one assignment, got %d", assignments)
	}

	event, _ := recorder.Last()
	if event.Outcome != string(OutcomeNoCapacity) || event.RecipientID != second.ID {
		t.Fatalf("unexpected notification %+v", event)
	}
}

func TestAllocationTakesOldestRoom(t *testing.T) {
	svc, db, _ := newService(t)
	university := testdb.University(t, db, "Kyoto University", "Japan")
	newer := testdb.Housing(t, db, university.ID, "New Wing", allotmentDay.Add(-1*time.Hour))
	older := testdb.Housing(t, db, university.ID, "Old Wing", allotmentDay.Add(-72*time.Hour))
	student := testdb.Student(t, db, "asha")

	result := decide(t, svc, request(t, svc, student, models.HousingApply), models.DecisionApprove)
	if result.Assignment.HousingID != older.ID {
		t.Fatalf("expected the oldest room %s, got %s", older.ID, result.Assignment.HousingID)
	}
	if !availability(t, db, newer.ID) {
		t.Fatal("the newer room must stay available")
	}
}

func TestVacateFreesRoom(t *testing.T) {
	svc, db, _ := newService(t)
	university := testdb.University(t, db, "Kyoto University", "Japan")
	room := testdb.Housing(t, db, university.ID, "North Hall", allotmentDay.Add(-time.Hour))
	student := testdb.Student(t, db, "asha")

	assigned := decide(t, svc, request(t, svc, student, models.HousingApply), models.DecisionApprove)

	again := decide(t, svc, request(t, svc, student, models.HousingApply), models.DecisionApprove)
	if again.Outcome != OutcomeAlreadyHoused || again.Request.Status != models.StatusRejected {
		t.Fatalf("housed student applying again: %+v", again)
	}

	vacated := decide(t, svc, request(t, svc, student, models.HousingVacate), models.DecisionApprove)
	if vacated.Outcome != OutcomeVacated || vacated.Request.Status != models.StatusApproved {
		t.Fatalf("vacate: %+v", vacated)
	}
	if !availability(t, db, room.ID) {
		t.Fatal("vacated room must be available again")
	}

	var stored models.HousingAssignment
	db.First(&stored, "id = ?", assigned.Assignment.ID)
	if utils.FormatDate(stored.CheckoutDate) != "2026-09-01" {
		t.Fatalf("checkout date = %q", utils.FormatDate(stored.CheckoutDate))
	}

	current, err := svc.CurrentAssignment(student.ID)
	if err != nil || current != nil {
		t.Fatalf("expected no active assignment, got %+v (%v)", current, err)
	}
}

func TestVacateWithoutAssignment(t *testing.T) {
	svc, db, _ := newService(t)
	student := testdb.Student(t, db, "asha")

	result := decide(t, svc, request(t, svc, student, models.HousingVacate), models.DecisionApprove)
	if result.Outcome != OutcomeNoActiveAssignment || result.Request.Status != models.StatusRejected {
		t.Fatalf("vacate without assignment: %+v", result)
	}
}

func TestRejectHasNoInventoryEffect(t *testing.T) {
	svc, db, _ := newService(t)
	university := testdb.University(t, db, "Kyoto University", "Japan")
	room := testdb.Housing(t, db, university.ID, "North Hall", allotmentDay)
	student := testdb.Student(t, db, "asha")
	req := request(t, svc, student, models.HousingApply)

	result := decide(t, svc, req, models.DecisionReject)
	if result.Outcome != OutcomeRejected || result.Assignment != nil {
		t.Fatalf("reject: %+v", result)
	}
	if !availability(t, db, room.ID) {
		t.Fatal("rejecting must not touch inventory")
	}

	_, err := svc.Decide(context.Background(), testdb.AsAdmin(), req.ID, models.DecisionApprove)
	if !errors.Is(err, apperrors.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	if !availability(t, db, room.ID) {
		t.Fatal("an already decided request must not allocate")
	}
}

func TestDecideMissingAndUnauthorized(t *testing.T) {
	svc, db, _ := newService(t)
	student := testdb.Student(t, db, "asha")
	req := request(t, svc, student, models.HousingApply)

	if _, err := svc.Decide(context.Background(), testdb.AsAdmin(), uuid.New(), models.DecisionApprove); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Decide(context.Background(), testdb.AsStudent(student), req.ID, models.DecisionApprove); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDirectAssign(t *testing.T) {
	svc, db, _ := newService(t)
	university := testdb.University(t, db, "Kyoto University", "Japan")
	room := testdb.Housing(t, db, university.ID, "North Hall", allotmentDay)
	other := testdb.Housing(t, db, university.ID, "South Hall", allotmentDay)
	asha := testdb.Student(t, db, "asha")
	ben := testdb.Student(t, db, "ben")
	admin := testdb.AsAdmin()
	ctx := context.Background()

	assignment, err := svc.Assign(ctx, admin, asha.ID, room.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assignment.HousingID != room.ID || availability(t, db, room.ID) {
		t.Fatal("room must be claimed by the direct assignment")
	}

	if _, err := svc.Assign(ctx, admin, ben.ID, room.ID); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict for an occupied room, got %v", err)
	}
	if _, err := svc.Assign(ctx, admin, asha.ID, other.ID); !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict for a housed student, got %v", err)
	}
	if !availability(t, db, other.ID) {
		t.Fatal("a refused assignment must roll back its claim")
	}
	if _, err := svc.Assign(ctx, admin, uuid.New(), other.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown student, got %v", err)
	}

	rows, err := svc.Occupancy()
	if err != nil || len(rows) != 2 {
		t.Fatalf("occupancy: %d rows (%v)", len(rows), err)
	}
	occupied := 0
	for _, row := range rows {
		if row.StudentName != nil && *row.StudentName == "asha" {
			occupied++
		}
	}
	if occupied != 1 {
		t.Fatalf("expected asha to occupy one room, got %d", occupied)
	}
}
