package config

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// pgCommand runs a postgres client tool against the configured server.
func pgCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	base := []string{
		"-h", GetEnvDefault("DB_HOST", "localhost"),
		"-p", GetEnvDefault("DB_PORT", "5432"),
		"-U", GetEnv("POSTGRES_USER"),
	}
	cmd := exec.CommandContext(ctx, name, append(base, args...)...)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+GetEnv("POSTGRES_PASSWORD"))
	return cmd
}

// BackupDatabase dumps the portal database with pg_dump into dir and
// returns the file written.
func BackupDatabase(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	fileName := filepath.Join(dir, fmt.Sprintf("db_backup_%s.sql", time.Now().Format("2006-01-02_15-04-05")))
	output, err := pgCommand(ctx, "pg_dump", "--no-owner", GetEnv("POSTGRES_DB")).Output()
	if err != nil {
		Logger.Error("Error backing up database", zap.Error(err))
		return "", fmt.Errorf("pg_dump failed: %w", err)
	}
	if err := os.WriteFile(fileName, output, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	Logger.Info("Database backup successful", zap.String("file", fileName), zap.Int("bytes", len(output)))
	return fileName, nil
}
