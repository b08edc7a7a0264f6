package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"study-abroad-backend/config"

	"go.uber.org/zap"
)

// CleanupExpiredFiles removes every regular file in dir older than ttl and
// returns how many were deleted.
func CleanupExpiredFiles(dir string, ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("error reading directory %s: %v", dir, err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			config.Logger.Warn("Could not stat export file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		if now.Sub(info.ModTime()) <= ttl {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			config.Logger.Warn("Error deleting expired file", zap.String("file", path), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
