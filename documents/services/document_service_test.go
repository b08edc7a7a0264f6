package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"study-abroad-backend/db/models"
	"study-abroad-backend/documents/repositories"
	"study-abroad-backend/internal/testdb"
	"study-abroad-backend/notifications"
	"study-abroad-backend/utils"
	"study-abroad-backend/utils/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fixture struct {
	svc         *DocumentService
	db          *gorm.DB
	storage     *utils.LocalFileStorage
	recorder    *notifications.Recorder
	campus      testdb.Campus
	application models.Application
	transcript  models.RequiredDocument
	passport    models.RequiredDocument
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testdb.Open(t)
	storage := utils.NewLocalFileStorage(t.TempDir())
	recorder := &notifications.Recorder{}
	svc := NewDocumentService(db, repositories.NewDocumentRepository(db), storage, recorder)
	svc.Now = func() time.Time { return time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC) }

	campus := testdb.NewCampus(t, db)
	return fixture{
		svc:         svc,
		db:          db,
		storage:     storage,
		recorder:    recorder,
		campus:      campus,
		application: testdb.Application(t, db, campus.Student.ID, campus.Program.ID),
		transcript:  testdb.RequiredDocument(t, db, campus.Program.ID, "Transcript"),
		passport:    testdb.RequiredDocument(t, db, campus.Program.ID, "Passport"),
	}
}

func (f fixture) upload(t *testing.T, name, content string) *models.ApplicationDocument {
	t.Helper()
	doc, err := f.svc.Upload(context.Background(), testdb.AsStudent(f.campus.Student), f.application.ID, f.transcript.ID, name, []byte(content))
	if err != nil {
		t.Fatalf("upload %s: %v", name, err)
	}
	return doc
}

func TestUploadStoresFileAsPending(t *testing.T) {
	f := newFixture(t)
	doc := f.upload(t, "My Transcript.docx", "v1")

	if doc.Status != models.StatusPending {
		t.Fatalf("expected Pending, got %s", doc.Status)
	}
	exists, err := f.storage.Exists(doc.FileName)
	if err != nil || !exists {
		t.Fatalf("expected stored file %s to exist (err=%v)", doc.FileName, err)
	}

	rc, name, err := f.svc.Open(testdb.AsMentor(f.campus.Mentor), f.application.ID, f.transcript.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "v1" || name != doc.FileName {
		t.Fatalf("unexpected content %q from %s", body, name)
	}
}

func TestReuploadResetsToPending(t *testing.T) {
	f := newFixture(t)
	first := f.upload(t, "transcript.docx", "v1")

	if _, err := f.svc.Decide(context.Background(), testdb.AsMentor(f.campus.Mentor), f.application.ID, f.transcript.ID, models.DecisionApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}

	second := f.upload(t, "transcript.docx", "v2")
	if second.Status != models.StatusPending {
		t.Fatalf("re-upload must reset to Pending, got %s", second.Status)
	}
	if second.ID != first.ID {
		t.Fatalf("re-upload must update the existing row")
	}
	if second.FileName == first.FileName {
		t.Fatal("expected a new stored file name")
	}
	if exists, _ := f.storage.Exists(first.FileName); exists {
		t.Fatal("replaced file should be removed")
	}

	var count int64
	f.db.Model(&models.ApplicationDocument{}).Where("application_id = ?", f.application.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one document row, got %d", count)
	}
}

func TestUploadRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	intruder := testdb.Student(t, f.db, "intruder")
	_, err := f.svc.Upload(ctx, testdb.AsStudent(intruder), f.application.ID, f.transcript.ID, "x.pdf", []byte("x"))
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for foreign application, got %v", err)
	}

	otherProgram := testdb.Program(t, f.db, "Other", f.campus.University.ID, nil)
	foreignReq := testdb.RequiredDocument(t, f.db, otherProgram.ID, "Essay")
	_, err = f.svc.Upload(ctx, testdb.AsStudent(f.campus.Student), f.application.ID, foreignReq.ID, "essay.docx", []byte("x"))
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for requirement of another program, got %v", err)
	}

	_, err = f.svc.Upload(ctx, testdb.AsStudent(f.campus.Student), f.application.ID, f.transcript.ID, "run.exe", []byte("x"))
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for extension, got %v", err)
	}

	_, err = f.svc.Upload(ctx, testdb.AsStudent(f.campus.Student), uuid.New(), f.transcript.ID, "a.pdf", []byte("x"))
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown application, got %v", err)
	}

	var count int64
	f.db.Model(&models.ApplicationDocument{}).Count(&count)
	if count != 0 {
		t.Fatalf("rejected uploads must not create rows, got %d", count)
	}
}

func TestDecideDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mentor := testdb.AsMentor(f.campus.Mentor)

	_, err := f.svc.Decide(ctx, mentor, f.application.ID, f.transcript.ID, models.DecisionApprove)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before upload, got %v", err)
	}

	f.upload(t, "transcript.png", "img")

	stranger := testdb.Mentor(t, f.db, "stranger")
	_, err = f.svc.Decide(ctx, testdb.AsMentor(stranger), f.application.ID, f.transcript.ID, models.DecisionApprove)
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for other mentor, got %v", err)
	}
	_, err = f.svc.Decide(ctx, testdb.AsAdmin(), f.application.ID, f.transcript.ID, models.DecisionApprove)
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("documents are decided by the program mentor only, got %v", err)
	}

	doc, err := f.svc.Decide(ctx, mentor, f.application.ID, f.transcript.ID, models.DecisionReject)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if doc.Status != models.StatusRejected {
		t.Fatalf("expected Rejected, got %s", doc.Status)
	}
	event, ok := f.recorder.Last()
	if !ok || event.Entity != models.ApplicationDocumentEntity || event.RecipientID != f.campus.Student.ID {
		t.Fatalf("unexpected notification %+v", event)
	}

	_, err = f.svc.Decide(ctx, mentor, f.application.ID, f.transcript.ID, models.DecisionApprove)
	if !errors.Is(err, apperrors.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}

	var application models.Application
	f.db.First(&application, "id = ?", f.application.ID)
	if application.Status != models.StatusPending {
		t.Fatalf("document decisions must not change the application, got %s", application.Status)
	}
}

func TestRequirementsListing(t *testing.T) {
	f := newFixture(t)
	f.upload(t, "transcript.jpg", "img")

	rows, err := f.svc.Requirements(testdb.AsStudent(f.campus.Student), f.application.ID)
	if err != nil {
		t.Fatalf("requirements: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(rows))
	}
	// ordered by document name: Passport, Transcript
	if rows[0].DocumentName != "Passport" || rows[0].Status != nil {
		t.Fatalf("passport should be missing, got %+v", rows[0])
	}
	if rows[1].Status == nil || *rows[1].Status != models.StatusPending {
		t.Fatalf("transcript should be Pending, got %+v", rows[1])
	}

	intruder := testdb.Student(t, f.db, "intruder")
	if _, err := f.svc.Requirements(testdb.AsStudent(intruder), f.application.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	pending, err := f.svc.PendingForMentor(testdb.AsMentor(f.campus.Mentor))
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected one pending document for mentor, got %d (%v)", len(pending), err)
	}
}
