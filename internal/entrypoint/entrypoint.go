package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/threedev/studio/internal/auth"
	"github.com/threedev/studio/internal/config"
	"github.com/threedev/studio/internal/database"
	"github.com/threedev/studio/internal/database/preferences"
	"github.com/threedev/studio/internal/database/users"
	"github.com/threedev/studio/internal/entities"
	"github.com/threedev/studio/internal/exporters"
	"github.com/threedev/studio/internal/logger"
	"github.com/threedev/studio/internal/scheduler"
	"github.com/threedev/studio/internal/services"
)

// App holds the store and every component built on it. One App is created
// per process and passed to the shell commands.
type App struct {
	Config *config.Config
	Log    *logger.Logger
	DB     *database.Database

	Users       *services.UserManager
	Preferences *services.PreferencesManager
	Render      *services.RenderManager

	Sessions *auth.SessionManager
	Exporter *exporters.YAMLExporter
	Backups  *scheduler.BackupScheduler
}

// NewApp opens the store and wires the repositories, managers and sessions.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	if log == nil {
		log = logger.NewNop()
	}

	db, err := database.NewDatabase(cfg.Database.Path,
		database.WithLogger(log),
		database.WithSQLLogging(cfg.Logging.SQL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := db.SQLDB()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}

	userRepo := users.NewRepository(db.DB, auth.NewBcryptHasher(cfg.Auth.BcryptCost))
	prefRepo := preferences.NewRepository(db.DB)

	app := &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		Users:       services.NewUserManager(userRepo),
		Preferences: services.NewPreferencesManager(prefRepo),
		Render:      services.NewRenderManager(prefRepo),
		Sessions:    auth.NewSessionManager(sqlDB, cfg.Session),
		Exporter:    exporters.NewYAMLExporter(prefRepo),
	}
	app.Backups = scheduler.NewBackupScheduler(db, cfg.Backup, app.autoSaveEnabled, log)

	return app, nil
}

// Close stops background work and closes the store.
func (a *App) Close() error {
	a.Backups.Stop()
	a.Sessions.Close()
	a.Log.Sync()
	return a.DB.Close()
}

// CurrentUser returns the signed-in account. A session whose account has
// since been deleted is ended.
func (a *App) CurrentUser(ctx context.Context) (*entities.User, error) {
	session, err := a.Sessions.Current(ctx)
	if err != nil {
		return nil, err
	}

	user, err := a.Users.GetUserByID(ctx, session.UserID)
	if errors.Is(err, users.ErrUserNotFound) {
		a.Log.Warn("session refers to a deleted account", "user_id", session.UserID)
		if err := a.Sessions.SignOut(ctx); err != nil {
			return nil, err
		}
		return nil, auth.ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// autoSaveEnabled gates scheduled backups on the signed-in user's auto_save preference.
func (a *App) autoSaveEnabled(ctx context.Context) (bool, error) {
	user, err := a.CurrentUser(ctx)
	if errors.Is(err, auth.ErrNotSignedIn) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	prefs, err := a.Preferences.GetPreferences(ctx, user.ID)
	if errors.Is(err, preferences.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return prefs.AutoSave, nil
}

// RunBackupDaemon runs scheduled backups until SIGINT or SIGTERM.
func (a *App) RunBackupDaemon(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Backups.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	a.Log.Info("shutting down backup daemon")
	a.Backups.Stop()
	return nil
}
