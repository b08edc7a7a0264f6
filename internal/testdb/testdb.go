// Package testdb opens an in-memory SQLite database migrated with the
// production models, plus fixture builders for workflow tests.
package testdb

import (
	"fmt"
	"testing"
	"time"

	"study-abroad-backend/config"
	"study-abroad-backend/db/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a fresh migrated database private to the test. The pool is
// limited to one connection, so code under test must not use the outer
// handle inside a transaction callback.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=private&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
}

func University(t *testing.T, db *gorm.DB, name, country string) models.University {
	t.Helper()
	u := models.University{Name: name, Country: country}
	must(t, db.Create(&u).Error)
	return u
}

func Mentor(t *testing.T, db *gorm.DB, name string) models.Mentor {
	t.Helper()
	m := models.Mentor{Name: name, Email: fmt.Sprintf("%s-%s@mentors.test", name, uuid.NewString()[:8]), Password: "x"}
	must(t, db.Create(&m).Error)
	return m
}

func Student(t *testing.T, db *gorm.DB, name string) models.Student {
	t.Helper()
	s := models.Student{Name: name, Email: fmt.Sprintf("%s-%s@students.test", name, uuid.NewString()[:8]), Password: "x"}
	must(t, db.Create(&s).Error)
	return s
}

func Program(t *testing.T, db *gorm.DB, title string, universityID uuid.UUID, mentorID *uuid.UUID) models.Program {
	t.Helper()
	p := models.Program{Title: title, UniversityID: universityID, MentorID: mentorID}
	must(t, db.Create(&p).Error)
	return p
}

func RequiredDocument(t *testing.T, db *gorm.DB, programID uuid.UUID, name string) models.RequiredDocument {
	t.Helper()
	r := models.RequiredDocument{ProgramID: programID, DocumentName: name}
	must(t, db.Create(&r).Error)
	return r
}

func Application(t *testing.T, db *gorm.DB, studentID, programID uuid.UUID) models.Application {
	t.Helper()
	a := models.Application{StudentID: studentID, ProgramID: programID, Status: models.StatusPending, AppliedDate: time.Now()}
	must(t, db.Create(&a).Error)
	return a
}

func Scholarship(t *testing.T, db *gorm.DB, programID uuid.UUID, name string, amount int64) models.Scholarship {
	t.Helper()
	s := models.Scholarship{ProgramID: programID, Name: name, Amount: decimal.NewFromInt(amount)}
	must(t, db.Create(&s).Error)
	return s
}

// Housing creates an available room. createdAt orders rooms for allocation.
func Housing(t *testing.T, db *gorm.DB, universityID uuid.UUID, location string, createdAt time.Time) models.Housing {
	t.Helper()
	h := models.Housing{UniversityID: universityID, Location: location, RoomType: "single", Rent: decimal.NewFromInt(500), Availability: true, CreatedAt: createdAt}
	must(t, db.Create(&h).Error)
	return h
}

func HousingRequest(t *testing.T, db *gorm.DB, studentID uuid.UUID, kind models.HousingRequestType) models.HousingRequest {
	t.Helper()
	r := models.HousingRequest{StudentID: studentID, RequestType: kind, Status: models.StatusPending, RequestDate: time.Now()}
	must(t, db.Create(&r).Error)
	return r
}

// Campus builds the common graph: one university, a mentor, a program owned
// by that mentor and a student.
type Campus struct {
	University models.University
	Mentor     models.Mentor
	Program    models.Program
	Student    models.Student
}

func NewCampus(t *testing.T, db *gorm.DB) Campus {
	t.Helper()
	u := University(t, db, "Kyoto University", "Japan")
	m := Mentor(t, db, "mentor")
	p := Program(t, db, "Robotics Exchange", u.ID, &m.ID)
	s := Student(t, db, "student")
	return Campus{University: u, Mentor: m, Program: p, Student: s}
}

// Principal helpers.
func AsStudent(s models.Student) models.Principal {
	return models.Principal{UserID: s.ID, Role: models.StudentRole, Email: s.Email, Name: s.Name}
}

func AsMentor(m models.Mentor) models.Principal {
	return models.Principal{UserID: m.ID, Role: models.MentorRole, Email: m.Email, Name: m.Name}
}

func AsAdmin() models.Principal {
	return models.Principal{UserID: uuid.New(), Role: models.AdminRole, Email: "admin@portal.test", Name: "Admin"}
}
