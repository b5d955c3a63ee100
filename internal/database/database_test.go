package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/threedev/studio/internal/entities"
	"github.com/threedev/studio/internal/logger"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableNames(t *testing.T, db *Database) []string {
	t.Helper()
	var names []string
	err := db.DB.Raw("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name").
		Scan(&names).Error
	require.NoError(t, err)
	return names
}

func TestNewDatabase_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "data", "3Dev.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
	assert.Equal(t, dbPath, db.Path())
}

func TestNewDatabase_CreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	assert.Equal(t,
		[]string{"goose_db_version", "render_preferences", "sessions", "user_preferences", "users"},
		tableNames(t, db))
}

func TestNewDatabase_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first, err := NewDatabase(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.DB.Exec("INSERT INTO users (username, credential) VALUES ('alice', 'x')").Error)
	require.NoError(t, first.Close())

	second, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer second.Close()

	var count int64
	require.NoError(t, second.DB.Raw("SELECT COUNT(*) FROM users").Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNewDatabase_EnforcesUniqueUsername(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.DB.Exec("INSERT INTO users (username, credential) VALUES ('alice', 'x')").Error)
	err := db.DB.Exec("INSERT INTO users (username, credential) VALUES ('alice', 'y')").Error

	assert.Error(t, err)
}

func TestNewDatabase_ForeignKeysCascade(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.DB.Exec("INSERT INTO users (id, username, credential) VALUES (1, 'alice', 'x')").Error)
	require.NoError(t, db.DB.Exec("INSERT INTO user_preferences (user_id) VALUES (1)").Error)
	require.NoError(t, db.DB.Exec(`INSERT INTO render_preferences
		(user_id, name, image_width, aspect_ratio, focus_distance, aperture, max_depth, samples_per_pixel)
		VALUES (1, 'Default', 1920, 1.5, 10, 1.8, 50, 100)`).Error)

	require.NoError(t, db.DB.Exec("DELETE FROM users WHERE id = 1").Error)

	var prefs, renders int64
	require.NoError(t, db.DB.Raw("SELECT COUNT(*) FROM user_preferences").Scan(&prefs).Error)
	require.NoError(t, db.DB.Raw("SELECT COUNT(*) FROM render_preferences").Scan(&renders).Error)
	assert.Zero(t, prefs)
	assert.Zero(t, renders)
}

func TestNewDatabase_RejectsOrphanPreferences(t *testing.T) {
	db := setupTestDB(t)

	err := db.DB.Exec("INSERT INTO user_preferences (user_id) VALUES (42)").Error

	assert.Error(t, err)
}

func TestNewDatabase_Memory(t *testing.T) {
	db, err := NewDatabase(MemoryPath)
	require.NoError(t, err)
	defer db.Close()

	assert.Len(t, tableNames(t, db), 5)
}

func TestNewDatabase_RecordsSchemaVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 2; i++ {
		db, err := NewDatabase(dbPath)
		require.NoError(t, err)

		var version int64
		require.NoError(t, db.DB.Raw("SELECT MAX(version_id) FROM goose_db_version").Scan(&version).Error)
		assert.Equal(t, int64(2), version)
		require.NoError(t, db.Close())
	}
}

func TestDatabase_Backup(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.DB.Exec("INSERT INTO users (username, credential) VALUES ('alice', 'x')").Error)

	dest := filepath.Join(t.TempDir(), "backups", "snapshot.db")
	require.NoError(t, db.Backup(context.Background(), dest))

	restored, err := NewDatabase(dest)
	require.NoError(t, err)
	defer restored.Close()

	var username string
	require.NoError(t, restored.DB.Raw("SELECT username FROM users").Scan(&username).Error)
	assert.Equal(t, "alice", username)
}

func TestDatabase_BackupRefusesOverwrite(t *testing.T) {
	db := setupTestDB(t)
	dest := filepath.Join(t.TempDir(), "snapshot.db")
	require.NoError(t, os.WriteFile(dest, []byte("keep"), 0o600))

	err := db.Backup(context.Background(), dest)

	assert.ErrorIs(t, err, ErrBackupExists)
	data, _ := os.ReadFile(dest)
	assert.Equal(t, "keep", string(data))
}

func TestNewDatabase_StoresTimestampsInUTC(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("EDT", -4*60*60)
	t.Cleanup(func() { time.Local = local })

	db := setupTestDB(t)
	require.NoError(t, db.DB.Create(&entities.User{Username: "alice", CredentialHash: "x"}).Error)

	var stored string
	require.NoError(t, db.DB.Raw("SELECT CAST(created_at AS TEXT) FROM users").Scan(&stored).Error)
	assert.True(t, strings.HasSuffix(stored, "+00:00"), stored)
}

func TestNewDatabase_SQLLogOmitsParameters(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"),
		WithLogger(logger.FromZap(zap.New(core))),
		WithSQLLogging(true),
	)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.DB.Exec("INSERT INTO users (username, credential) VALUES (?, ?)",
		"alice", "$2a$04$hashed-credential").Error)

	var statements []string
	for _, entry := range logs.FilterMessage("sql").All() {
		statements = append(statements, entry.ContextMap()["statement"].(string))
	}
	require.NotEmpty(t, statements)

	joined := strings.Join(statements, "\n")
	assert.Contains(t, joined, "INSERT INTO users")
	assert.NotContains(t, joined, "hashed-credential")
	assert.NotContains(t, joined, "alice")
}
