package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		Global
		Database
		Auth
		Session
		Backup
		Logging
	}

	Global struct {
		DataDir string
	}
	Database struct {
		Path string
	}
	Auth struct {
		BcryptCost int
	}
	Session struct {
		Lifetime  time.Duration
		TokenPath string // File holding the current session token
	}
	Backup struct {
		Dir      string
		Schedule string // Cron format: "0 * * * *" = hourly
		Retain   int    // Number of snapshots to keep
	}
	Logging struct {
		Mode string // "development" or "production"
		SQL  bool   // Log every SQL statement
	}
)

// DefaultDataDir returns the per-user application data directory,
// falling back to the working directory when the OS gives none.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", AppDirName)
	}
	return filepath.Join(dir, AppDirName)
}

func NewConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("THREEDEV")
	v.AutomaticEnv()
	v.SetDefault("data_dir", DefaultDataDir())

	dataDir := v.GetString("DATA_DIR")

	v.SetDefault("database_path", filepath.Join(dataDir, DatabaseFileName))

	// Auth defaults
	v.SetDefault("bcrypt_cost", 12)

	// Session defaults
	v.SetDefault("session_lifetime", "720h") // 30 days
	v.SetDefault("session_token_path", filepath.Join(dataDir, SessionTokenFileName))

	// Backup defaults
	v.SetDefault("backup_dir", filepath.Join(dataDir, BackupDirName))
	v.SetDefault("backup_schedule", "0 * * * *") // Hourly at :00
	v.SetDefault("backup_retain", 5)

	// Logging defaults
	v.SetDefault("log_mode", "development")
	v.SetDefault("log_sql", false)

	return &Config{
		Global: Global{
			DataDir: dataDir,
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			BcryptCost: v.GetInt("BCRYPT_COST"),
		},
		Session: Session{
			Lifetime:  v.GetDuration("SESSION_LIFETIME"),
			TokenPath: v.GetString("SESSION_TOKEN_PATH"),
		},
		Backup: Backup{
			Dir:      v.GetString("BACKUP_DIR"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
			Retain:   v.GetInt("BACKUP_RETAIN"),
		},
		Logging: Logging{
			Mode: v.GetString("LOG_MODE"),
			SQL:  v.GetBool("LOG_SQL"),
		},
	}
}
