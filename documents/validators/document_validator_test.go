package validators

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"study-abroad-backend/utils/apperrors"
)

// minimalPDF builds a one-page PDF with a correct cross-reference table.
func minimalPDF() []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestValidateUploadExtensions(t *testing.T) {
	v := NewDocumentValidator()

	for _, name := range []string{"photo.JPG", "scan.jpeg", "card.png", "cv.doc", "cv.docx"} {
		ext, err := v.ValidateUpload(name, []byte("content"))
		if err != nil {
			t.Fatalf("%s should be accepted: %v", name, err)
		}
		if ext == "" {
			t.Fatalf("%s: expected extension", name)
		}
	}

	for _, name := range []string{"virus.exe", "notes.txt", "noextension", ""} {
		if _, err := v.ValidateUpload(name, []byte("content")); !errors.Is(err, apperrors.ErrValidation) {
			t.Fatalf("%q should be rejected with a validation error, got %v", name, err)
		}
	}
}

func TestValidateUploadEmpty(t *testing.T) {
	v := NewDocumentValidator()
	if _, err := v.ValidateUpload("cv.docx", nil); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for empty file, got %v", err)
	}
}

func TestValidateUploadPDF(t *testing.T) {
	v := NewDocumentValidator()

	ext, err := v.ValidateUpload("transcript.pdf", minimalPDF())
	if err != nil {
		t.Fatalf("valid PDF rejected: %v", err)
	}
	if ext != "pdf" {
		t.Fatalf("expected pdf, got %s", ext)
	}

	if _, err := v.ValidateUpload("transcript.pdf", []byte("this is not a pdf")); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error for broken PDF, got %v", err)
	}
}

func TestContentType(t *testing.T) {
	if ContentType("a/b/file.PDF") != "application/pdf" {
		t.Fatal("pdf content type")
	}
	if ContentType("file.bin") != "application/octet-stream" {
		t.Fatal("fallback content type")
	}
}
