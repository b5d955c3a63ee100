package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/threedev/studio/internal/database/migrations"
	"github.com/threedev/studio/internal/logger"
)

// MemoryPath opens a private in-memory store.
const MemoryPath = ":memory:"

var ErrBackupExists = errors.New("backup destination already exists")

// Database owns the store file and its schema. Repositories receive the
// *gorm.DB handle; every call checks a connection out of the pool and
// returns it when done.
type Database struct {
	DB   *gorm.DB
	path string
	log  *logger.Logger
}

type options struct {
	log        *logger.Logger
	sqlLogging bool
}

type Option func(*options)

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSQLLogging logs every statement through gorm's logger.
func WithSQLLogging(enabled bool) Option {
	return func(o *options) { o.sqlLogging = enabled }
}

func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	o := options{log: logger.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	logLevel := gormlogger.Silent
	if o.sqlLogging {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger: gormlogger.New(sqlWriter{log: o.log}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		// timestamps are compared as stored text, so they must share one offset
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if dbPath == MemoryPath {
		// each connection would otherwise see its own empty database
		sqlDB.SetMaxOpenConns(1)
	}

	version, err := migrate(context.Background(), sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	o.log.Debug("database initialized", "path", dbPath, "schema_version", version)

	return &Database{DB: db, path: dbPath, log: o.log}, nil
}

// sqlWriter sends gorm's statement log to the application logger. Bound
// parameters never reach it.
type sqlWriter struct {
	log *logger.Logger
}

func (w sqlWriter) Printf(format string, args ...interface{}) {
	w.log.Info("sql", "statement", fmt.Sprintf(format, args...))
}

// migrate applies the embedded migrations and returns the resulting version.
func migrate(ctx context.Context, db *sql.DB) (int64, error) {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}

func dsn(dbPath string) string {
	params := "_foreign_keys=1&_busy_timeout=5000"
	if strings.Contains(dbPath, "?") {
		return dbPath + "&" + params
	}
	return dbPath + "?" + params
}

// Path returns the location the store was opened from.
func (d *Database) Path() string {
	return d.path
}

// SQLDB returns the underlying connection pool.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Backup writes a consistent snapshot of the store to dest.
func (d *Database) Backup(ctx context.Context, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%w: %s", ErrBackupExists, dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := d.DB.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error; err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}
	d.log.Info("database backed up", "path", dest)
	return nil
}
