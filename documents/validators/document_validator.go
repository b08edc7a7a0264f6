package validators

import (
	"bytes"
	"path/filepath"
	"strings"

	"study-abroad-backend/utils/apperrors"

	"github.com/ledongthuc/pdf"
)

// MaxUploadSize bounds a single uploaded document.
const MaxUploadSize = 10 * 1024 * 1024

var allowedExtensions = map[string]bool{
	"pdf":  true,
	"doc":  true,
	"docx": true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

type DocumentValidator struct{}

func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{}
}

// ValidateUpload checks the file name and content of an uploaded document
// and returns its lower-cased extension.
func (v *DocumentValidator) ValidateUpload(fileName string, content []byte) (string, error) {
	if err := v.validateFileName(fileName); err != nil {
		return "", err
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if !allowedExtensions[ext] {
		return "", apperrors.NewValidationError("invalid file type: .%s is not allowed", ext)
	}

	if len(content) == 0 {
		return "", apperrors.NewValidationError("uploaded file is empty")
	}
	if len(content) > MaxUploadSize {
		return "", apperrors.NewValidationError("file size exceeds maximum allowed size (10MB)")
	}

	if ext == "pdf" {
		if err := v.validatePDF(content); err != nil {
			return "", err
		}
	}
	return ext, nil
}

func (v *DocumentValidator) validateFileName(fileName string) error {
	if strings.TrimSpace(fileName) == "" {
		return apperrors.NewValidationError("file name cannot be empty")
	}
	if len(fileName) > 255 {
		return apperrors.NewValidationError("file name cannot exceed 255 characters")
	}
	return nil
}

// validatePDF rejects files that claim to be PDFs but cannot be parsed.
func (v *DocumentValidator) validatePDF(content []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewValidationError("file is not a readable PDF")
		}
	}()

	reader, perr := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if perr != nil {
		return apperrors.NewValidationError("file is not a readable PDF: %s", perr.Error())
	}
	if reader.NumPage() < 1 {
		return apperrors.NewValidationError("PDF has no pages")
	}
	return nil
}

// ContentType maps an allowed extension to the MIME type used for downloads.
func ContentType(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}
