// Package scheduler runs the portal's periodic jobs on a cron.
package scheduler

import (
	"context"
	"time"

	"study-abroad-backend/config"
	"study-abroad-backend/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	VisaReminderSpec  = "0 7 * * *"
	ExportCleanupSpec = "@hourly"

	// DefaultExportTTL is how long generated spreadsheets and letters stay downloadable.
	DefaultExportTTL = 24 * time.Hour
)

// ReminderSender is satisfied by the visa service.
type ReminderSender interface {
	SendExpiryReminders(ctx context.Context, days int) (int, error)
}

type Options struct {
	ReminderDays int
	ExportDir    string
	ExportTTL    time.Duration
	Location     *time.Location
}

type Scheduler struct {
	cron      *cron.Cron
	reminders ReminderSender
	opts      Options
	now       func() time.Time
}

func New(reminders ReminderSender, opts Options) (*Scheduler, error) {
	if opts.ExportTTL <= 0 {
		opts.ExportTTL = DefaultExportTTL
	}
	if opts.Location == nil {
		opts.Location = utils.DateLocation
	}

	s := &Scheduler{
		cron:      cron.New(cron.WithLocation(opts.Location)),
		reminders: reminders,
		opts:      opts,
		now:       time.Now,
	}
	if _, err := s.cron.AddFunc(VisaReminderSpec, s.RunVisaReminders); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(ExportCleanupSpec, s.RunExportCleanup); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	config.Logger.Info("Scheduler started",
		zap.String("visa_reminders", VisaReminderSpec),
		zap.String("export_cleanup", ExportCleanupSpec),
	)
}

// Stop waits for running jobs to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		config.Logger.Warn("Scheduler stopped before running jobs finished")
	}
}

func (s *Scheduler) RunVisaReminders() {
	if s.reminders == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sent, err := s.reminders.SendExpiryReminders(ctx, s.opts.ReminderDays)
	if err != nil {
		config.Logger.Error("Visa reminder job failed", zap.Error(err))
		return
	}
	config.Logger.Info("Visa reminder job finished", zap.Int("sent", sent))
}

func (s *Scheduler) RunExportCleanup() {
	if s.opts.ExportDir == "" {
		return
	}
	removed, err := utils.CleanupExpiredFiles(s.opts.ExportDir, s.opts.ExportTTL, s.now())
	if err != nil {
		config.Logger.Error("Export cleanup failed", zap.String("dir", s.opts.ExportDir), zap.Error(err))
		return
	}
	if removed > 0 {
		config.Logger.Info("Expired exports removed", zap.Int("count", removed))
	}
}
