package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threedev/studio/internal/config"
	"github.com/threedev/studio/internal/database"
)

type fakeStore struct {
	mu    sync.Mutex
	dests []string
	err   error
}

func (f *fakeStore) Backup(_ context.Context, dest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.dests = append(f.dests, dest)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte("snapshot"), 0o644)
}

func newTestScheduler(t *testing.T, store Snapshotter, retain int, gate GateFunc) *BackupScheduler {
	t.Helper()
	s := NewBackupScheduler(store, config.Backup{
		Dir:      filepath.Join(t.TempDir(), "backups"),
		Schedule: "0 * * * *",
		Retain:   retain,
	}, gate, nil)

	// Deterministic, strictly increasing timestamps
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 * * * *", true},
		{"*/15 * * * *", true},
		{"0 0 * * 0", true},
		{"* * * *", false},
		{"0 0 * * * *", false},
		{"not a schedule", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGetCronDescription(t *testing.T) {
	assert.Equal(t, "Every hour at :00", GetCronDescription("0 * * * *"))
	assert.Equal(t, "Daily at midnight", GetCronDescription("0 0 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", GetCronDescription("5 4 * * *"))
}

func TestGetNextRunTime(t *testing.T) {
	next, err := GetNextRunTime("0 * * * *")
	require.NoError(t, err)
	assert.True(t, next.After(time.Now()))
	assert.Zero(t, next.Minute())

	_, err = GetNextRunTime("bogus")
	assert.Error(t, err)
}

func TestBackupScheduler_RunNow(t *testing.T) {
	store := &fakeStore{}
	s := newTestScheduler(t, store, 5, nil)

	path, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.dir, "3Dev-20240501-120001.000.db"), path)
	assert.FileExists(t, path)
}

func TestBackupScheduler_Retention(t *testing.T) {
	store := &fakeStore{}
	s := newTestScheduler(t, store, 3, nil)
	ctx := context.Background()

	var written []string
	for i := 0; i < 5; i++ {
		path, err := s.RunNow(ctx)
		require.NoError(t, err)
		written = append(written, path)
	}

	// Unrelated files are left alone
	other := filepath.Join(s.dir, "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("keep"), 0o644))

	snapshots, err := s.Snapshots()
	require.NoError(t, err)
	assert.Equal(t, written[2:], snapshots)
	assert.FileExists(t, other)
}

func TestBackupScheduler_RunNowError(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	s := newTestScheduler(t, store, 3, nil)

	_, err := s.RunNow(context.Background())
	assert.EqualError(t, err, "disk full")

	snapshots, err := s.Snapshots()
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestBackupScheduler_Gate(t *testing.T) {
	ctx := context.Background()

	t.Run("closed gate skips", func(t *testing.T) {
		store := &fakeStore{}
		s := newTestScheduler(t, store, 3, func(context.Context) (bool, error) { return false, nil })
		s.runScheduled(ctx)
		assert.Empty(t, store.dests)
	})

	t.Run("gate error skips", func(t *testing.T) {
		store := &fakeStore{}
		s := newTestScheduler(t, store, 3, func(context.Context) (bool, error) {
			return false, errors.New("no session")
		})
		s.runScheduled(ctx)
		assert.Empty(t, store.dests)
	})

	t.Run("open gate backs up", func(t *testing.T) {
		store := &fakeStore{}
		s := newTestScheduler(t, store, 3, func(context.Context) (bool, error) { return true, nil })
		s.runScheduled(ctx)
		assert.Len(t, store.dests, 1)
	})
}

func TestBackupScheduler_StartStop(t *testing.T) {
	s := newTestScheduler(t, &fakeStore{}, 3, nil)

	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRunTime())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	// Starting twice is a no-op
	require.NoError(t, s.Start(context.Background()))

	next := s.NextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestBackupScheduler_StopsOnContextCancel(t *testing.T) {
	s := newTestScheduler(t, &fakeStore{}, 3, nil)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestBackupScheduler_InvalidSchedule(t *testing.T) {
	s := NewBackupScheduler(&fakeStore{}, config.Backup{Dir: t.TempDir(), Schedule: "nope"}, nil, nil)
	assert.Error(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
}

func TestBackupScheduler_WithDatabase(t *testing.T) {
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "live.db"))
	require.NoError(t, err)
	defer db.Close()

	s := newTestScheduler(t, db, 2, nil)
	path, err := s.RunNow(context.Background())
	require.NoError(t, err)

	snapshot, err := database.NewDatabase(path)
	require.NoError(t, err)
	defer snapshot.Close()

	var count int64
	require.NoError(t, snapshot.DB.Table("users").Count(&count).Error)
	assert.Zero(t, count)
}
