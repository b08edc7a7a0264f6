package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeSender struct {
	calls []int
	err   error
}

func (f *fakeSender) SendExpiryReminders(_ context.Context, days int) (int, error) {
	f.calls = append(f.calls, days)
	return 3, f.err
}

func TestNewRegistersJobs(t *testing.T) {
	s, err := New(&fakeSender{}, Options{ReminderDays: 14, Location: time.UTC})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := len(s.cron.Entries()); got != 2 {
		t.Fatalf("expected 2 cron entries, got %d", got)
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestRunVisaRemindersPassesWindow(t *testing.T) {
	sender := &fakeSender{}
	s, _ := New(sender, Options{ReminderDays: 14, Location: time.UTC})

	s.RunVisaReminders()
	sender.err = errors.New("redis down")
	s.RunVisaReminders()

	if len(sender.calls) != 2 || sender.calls[0] != 14 {
		t.Fatalf("unexpected reminder calls %v", sender.calls)
	}
}

func TestRunExportCleanupRemovesOldFiles(t *testing.T) {
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

	s, _ := New(nil, Options{ExportDir: dir, ExportTTL: 24 * time.Hour, Location: time.UTC})
	s.now = func() time.Time { return now }
	s.RunExportCleanup()

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Fatalf("expired export should be removed, stat err=%v", err)
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Fatalf("fresh export should stay: %v", err)
	}
}
