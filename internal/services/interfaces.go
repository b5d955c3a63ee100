package services

import (
	"context"

	"github.com/threedev/studio/internal/entities"
)

// AccountStore provides access to user accounts.
type AccountStore interface {
	CreateUser(ctx context.Context, username, credential string) (*entities.User, error)
	GetUserByUsername(ctx context.Context, username string) (*entities.User, error)
	GetUserByID(ctx context.Context, id uint) (*entities.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Authenticate(ctx context.Context, username, credential string) (*entities.User, error)
	UpdateCredentials(ctx context.Context, userID uint, update entities.CredentialUpdate) (bool, error)
	DeleteUser(ctx context.Context, userID uint) error
	CountUsers(ctx context.Context) (int64, error)
}

// PreferencesStore provides access to UI preferences and the combined settings view.
type PreferencesStore interface {
	GetUserPreferences(ctx context.Context, userID uint) (*entities.UserPreferences, error)
	UpdateUserPreferences(ctx context.Context, userID uint, update entities.UserPreferencesUpdate) (bool, error)
	GetAllSettings(ctx context.Context, username string) (*entities.AllSettings, error)
}

// RenderStore provides access to render configurations.
type RenderStore interface {
	CreateRenderConfig(ctx context.Context, userID uint, name string, settings entities.RenderPreferencesUpdate) (*entities.RenderPreferences, error)
	GetRenderConfig(ctx context.Context, userID, configID uint) (*entities.RenderPreferences, error)
	GetPrimaryRenderConfig(ctx context.Context, userID uint) (*entities.RenderPreferences, error)
	GetUserRenderConfigs(ctx context.Context, userID uint) ([]entities.RenderPreferences, error)
	UpdateRenderConfig(ctx context.Context, userID, configID uint, update entities.RenderPreferencesUpdate) (bool, error)
	UpdatePrimaryRenderConfig(ctx context.Context, userID uint, update entities.RenderPreferencesUpdate) (bool, error)
	DeleteRenderConfig(ctx context.Context, userID, configID uint) (bool, error)
}
