package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStorage persists uploaded document bytes. Save returns the
// storage-relative name that is recorded as document metadata.
type FileStorage interface {
	Save(ownerID uuid.UUID, logicalName string, content []byte) (string, error)
	Open(relativePath string) (io.ReadCloser, error)
	Delete(relativePath string) error
	Exists(relativePath string) (bool, error)
}

type LocalFileStorage struct {
	uploadPath string
}

func NewLocalFileStorage(uploadPath string) *LocalFileStorage {
	return &LocalFileStorage{uploadPath: uploadPath}
}

// Save writes content under <uploadPath>/<ownerID>/ with a timestamped,
// sanitised file name.
func (s *LocalFileStorage) Save(ownerID uuid.UUID, logicalName string, content []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(logicalName))
	base := CleanStringForFilename(strings.TrimSuffix(filepath.Base(logicalName), filepath.Ext(logicalName)))
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), base, ext)
	relative := filepath.Join(ownerID.String(), name)

	dir := filepath.Join(s.uploadPath, ownerID.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	fullPath := filepath.Join(s.uploadPath, relative)
	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, bytes.NewReader(content)); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to copy file content: %w", err)
	}

	return filepath.ToSlash(relative), nil
}

// Open retrieves a file for reading
func (s *LocalFileStorage) Open(relativePath string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a file from storage; a missing file is not an error.
func (s *LocalFileStorage) Delete(relativePath string) error {
	fullPath, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalFileStorage) Exists(relativePath string) (bool, error) {
	fullPath, err := s.resolve(relativePath)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

// resolve keeps relative paths inside the upload root.
func (s *LocalFileStorage) resolve(relativePath string) (string, error) {
	clean := filepath.Clean("/" + relativePath)
	return filepath.Join(s.uploadPath, clean), nil
}
