package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestTodayUsesDateLocation(t *testing.T) {
	prev := DateLocation
	defer func() { DateLocation = prev }()

	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	DateLocation = loc

	// 20:00 UTC on the 1st is already the 2nd in Tokyo.
	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	got := time.Time(Today(now))
	if got.Day() != 2 || got.Month() != time.March {
		t.Fatalf("expected 2 March, got %v", got)
	}
}

func TestAddDaysCrossesLeapYear(t *testing.T) {
	DateLocation = time.UTC
	start := datatypes.Date(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	got := time.Time(AddDays(start, 365))
	want := time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDaysBetweenComparesCalendarDates(t *testing.T) {
	newYork := time.FixedZone("UTC-5", -5*60*60)
	today := datatypes.Date(time.Date(2026, 2, 10, 0, 0, 0, 0, newYork))
	expiry := datatypes.Date(time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC))
	if got := DaysBetween(today, expiry); got != 10 {
		t.Fatalf("expected 10 days, got %d", got)
	}

	tokyo := time.FixedZone("UTC+9", 9*60*60)
	if got := DaysBetween(datatypes.Date(time.Date(2026, 2, 10, 0, 0, 0, 0, tokyo)), expiry); got != 10 {
		t.Fatalf("expected 10 days from a UTC+9 date, got %d", got)
	}
	if got := DaysBetween(expiry, today); got != -10 {
		t.Fatalf("expected -10 days, got %d", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("")
	if err != nil || d != nil {
		t.Fatalf("empty input should yield nil, got %v %v", d, err)
	}
	d, err = ParseDate("2025-09-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatDate(d) != "2025-09-01" {
		t.Fatalf("round trip mismatch: %s", FormatDate(d))
	}
	if _, err := ParseDate("01/09/2025"); err == nil {
		t.Fatal("expected error for wrong layout")
	}
}

func TestLocalFileStorageSaveAndOpen(t *testing.T) {
	root := t.TempDir()
	storage := NewLocalFileStorage(root)
	owner := uuid.New()

	name, err := storage.Save(owner, "My Transcript (final).PDF", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(name, owner.String()+"/") {
		t.Fatalf("expected name under owner dir, got %s", name)
	}
	if !strings.HasSuffix(name, ".pdf") {
		t.Fatalf("expected lower-cased extension, got %s", name)
	}

	rc, err := storage.Open(name)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer rc.Close()
	content, _ := io.ReadAll(rc)
	if string(content) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", content)
	}

	ok, err := storage.Exists(name)
	if err != nil || !ok {
		t.Fatalf("expected file to exist: %v", err)
	}
	if err := storage.Delete(name); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := storage.Delete(name); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestLocalFileStorageStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	storage := NewLocalFileStorage(root)

	outside := filepath.Join(filepath.Dir(root), "secret.txt")
	if err := os.WriteFile(outside, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(outside)

	ok, err := storage.Exists("../secret.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("path traversal escaped the upload root")
	}
}

func TestCleanStringForFilename(t *testing.T) {
	cases := map[string]string{
		"Statement of Purpose": "Statement_of_Purpose",
		"../../etc/passwd":     "etcpasswd",
		"***":                  "file",
	}
	for in, want := range cases {
		if got := CleanStringForFilename(in); got != want {
			t.Errorf("CleanStringForFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanupExpiredFiles(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.xlsx")
	newFile := filepath.Join(dir, "new.xlsx")
	for _, p := range []string{oldFile, newFile} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	now := time.Now()
	if err := os.Chtimes(oldFile, now.Add(-48*time.Hour), now.Add(-48*time.Hour)); err != nil {
		t.Fatal(err)
	}

	removed, err := CleanupExpiredFiles(dir, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Fatalf("fresh file should remain: %v", err)
	}

	if n, err := CleanupExpiredFiles(filepath.Join(dir, "missing"), time.Hour, now); err != nil || n != 0 {
		t.Fatalf("missing dir should be a no-op, got %d %v", n, err)
	}
}

func TestGenerateCacheKeyIsOrderIndependent(t *testing.T) {
	a := GenerateCacheKey("dashboard", map[string]string{"a": "1", "b": "2"})
	b := GenerateCacheKey("dashboard", map[string]string{"b": "2", "a": "1"})
	if a != b {
		t.Fatalf("keys differ: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "dashboard:") {
		t.Fatalf("missing resource prefix: %s", a)
	}
}

func TestGenerateExcel(t *testing.T) {
	prev := ExportDir
	ExportDir = t.TempDir()
	defer func() { ExportDir = prev }()

	path, err := GenerateExcel("applications export", []string{"Student", "Status"}, [][]interface{}{
		{"Asha", "Pending"},
		{"Ben", "Approved"},
	})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasPrefix(path, "/public/files/applications_export_") {
		t.Fatalf("unexpected public path %s", path)
	}
	if _, err := os.Stat(filepath.Join(ExportDir, filepath.Base(path))); err != nil {
		t.Fatalf("file not written: %v", err)
	}
}

func TestValidateStructReportsJSONField(t *testing.T) {
	type req struct {
		Email string `json:"email" validate:"required,email"`
		Kind  string `json:"kind" validate:"oneof=apply vacate"`
	}

	err := ValidateStruct(req{Email: "", Kind: "apply"})
	if err == nil || err.Error() != "email is required" {
		t.Fatalf("unexpected error: %v", err)
	}
	err = ValidateStruct(req{Email: "a@b.co", Kind: "swap"})
	if err == nil || err.Error() != "kind must be one of: apply vacate" {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateStruct(req{Email: "a@b.co", Kind: "vacate"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}
