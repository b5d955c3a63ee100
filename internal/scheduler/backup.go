package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/threedev/studio/internal/config"
	"github.com/threedev/studio/internal/logger"
)

const (
	backupPrefix     = "3Dev-"
	backupSuffix     = ".db"
	backupTimeFormat = "20060102-150405.000"
)

// Snapshotter writes a consistent copy of the store to dest.
type Snapshotter interface {
	Backup(ctx context.Context, dest string) error
}

// GateFunc decides whether a scheduled backup should run.
type GateFunc func(ctx context.Context) (bool, error)

// BackupScheduler snapshots the store on a cron schedule and keeps the newest
// snapshots only.
type BackupScheduler struct {
	store    Snapshotter
	dir      string
	schedule string
	retain   int
	gate     GateFunc
	log      *logger.Logger
	now      func() time.Time

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	runMu      sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewBackupScheduler creates a new scheduler instance. A nil gate lets every
// scheduled run through.
func NewBackupScheduler(store Snapshotter, cfg config.Backup, gate GateFunc, log *logger.Logger) *BackupScheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &BackupScheduler{
		store:    store,
		dir:      cfg.Dir,
		schedule: cfg.Schedule,
		retain:   cfg.Retain,
		gate:     gate,
		log:      log,
		now:      time.Now,
		cron:     cron.New(cron.WithParser(newParser())),
	}
}

// Start schedules the backup job.
func (s *BackupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runScheduled(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backup job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := GetNextRunTime(s.schedule)
	s.log.Info("backup scheduler started",
		"schedule", s.schedule,
		"description", GetCronDescription(s.schedule),
		"next_run", nextRun,
		"dir", s.dir)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running backup and stops the scheduler.
func (s *BackupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	s.log.Info("backup scheduler stopped")
}

// IsRunning returns whether the scheduler is active
func (s *BackupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next backup will occur
func (s *BackupScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// RunNow writes a snapshot immediately, ignoring the gate, and prunes old
// snapshots. It returns the path of the new snapshot.
func (s *BackupScheduler) RunNow(ctx context.Context) (string, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	dest := filepath.Join(s.dir, backupPrefix+s.now().UTC().Format(backupTimeFormat)+backupSuffix)
	if err := s.store.Backup(ctx, dest); err != nil {
		return "", err
	}

	removed, err := s.prune()
	if err != nil {
		s.log.Warn("failed to prune old backups", "dir", s.dir, "error", err)
	}
	s.log.Info("backup written", "path", dest, "pruned", len(removed))
	return dest, nil
}

// Snapshots lists existing snapshot files, oldest first.
func (s *BackupScheduler) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, backupSuffix) {
			names = append(names, name)
		}
	}
	// Timestamped names sort chronologically
	sort.Strings(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(s.dir, name)
	}
	return paths, nil
}

func (s *BackupScheduler) prune() ([]string, error) {
	if s.retain <= 0 {
		return nil, nil
	}
	paths, err := s.Snapshots()
	if err != nil {
		return nil, err
	}
	if len(paths) <= s.retain {
		return nil, nil
	}

	stale := paths[:len(paths)-s.retain]
	for _, p := range stale {
		if err := os.Remove(p); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return stale, nil
}

func (s *BackupScheduler) runScheduled(ctx context.Context) {
	if s.gate != nil {
		ok, err := s.gate(ctx)
		if err != nil {
			s.log.Warn("backup skipped", "reason", "gate failed", "error", err)
			return
		}
		if !ok {
			s.log.Debug("backup skipped", "reason", "auto save disabled")
			return
		}
	}

	start := time.Now()
	path, err := s.RunNow(ctx)
	if err != nil {
		s.log.Error("backup failed", "error", err)
		return
	}
	s.log.Debug("scheduled backup finished", "path", path, "duration", time.Since(start).Round(time.Millisecond))
}

func newParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}

// ValidateCronSchedule validates a five-field cron expression
func ValidateCronSchedule(schedule string) error {
	_, err := newParser().Parse(schedule)
	return err
}

// GetCronDescription returns a human-readable description of a cron schedule
func GetCronDescription(schedule string) string {
	switch schedule {
	case "0 * * * *":
		return "Every hour at :00"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 */6 * * *":
		return "Every 6 hours"
	case "0 0 * * *":
		return "Daily at midnight"
	case "0 0 * * 0":
		return "Weekly on Sunday at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}

// GetNextRunTime calculates when the next backup will run based on the schedule
func GetNextRunTime(schedule string) (*time.Time, error) {
	sched, err := newParser().Parse(schedule)
	if err != nil {
		return nil, err
	}
	next := sched.Next(time.Now())
	return &next, nil
}
