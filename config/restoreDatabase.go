package config

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// RestoreDatabase recreates the portal database and replays a pg_dump file
// into it. Other sessions on the database are terminated first.
func RestoreDatabase(ctx context.Context, backupFile string) error {
	file, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup %s: %w", backupFile, err)
	}
	defer file.Close()

	dbName := GetEnv("POSTGRES_DB")
	steps := []struct {
		name string
		sql  string
	}{
		{"terminate sessions", fmt.Sprintf("SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = '%s' AND pid <> pg_backend_pid();", dbName)},
		{"drop database", fmt.Sprintf(`DROP DATABASE IF EXISTS "%s";`, dbName)},
		{"create database", fmt.Sprintf(`CREATE DATABASE "%s";`, dbName)},
	}
	for _, step := range steps {
		if output, err := pgCommand(ctx, "psql", "-d", "postgres", "-c", step.sql).CombinedOutput(); err != nil {
			Logger.Error("Database restore step failed", zap.String("step", step.name), zap.ByteString("output", output), zap.Error(err))
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	cmd := pgCommand(ctx, "psql", "-v", "ON_ERROR_STOP=1", "-d", dbName)
	cmd.Stdin = file
	if output, err := cmd.CombinedOutput(); err != nil {
		Logger.Error("Error restoring database", zap.ByteString("output", output), zap.Error(err))
		return fmt.Errorf("psql restore failed: %w", err)
	}

	Logger.Info("Database restore successful", zap.String("file", backupFile))
	return nil
}
