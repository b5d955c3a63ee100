package services

import (
	"context"

	"github.com/threedev/studio/internal/entities"
)

// PreferencesManager is the UI preference surface of the settings screen.
type PreferencesManager struct {
	prefs PreferencesStore
}

// NewPreferencesManager creates a new PreferencesManager.
func NewPreferencesManager(prefs PreferencesStore) *PreferencesManager {
	return &PreferencesManager{prefs: prefs}
}

func (m *PreferencesManager) GetPreferences(ctx context.Context, userID uint) (*entities.UserPreferences, error) {
	return m.prefs.GetUserPreferences(ctx, userID)
}

func (m *PreferencesManager) UpdatePreferences(ctx context.Context, userID uint, update entities.UserPreferencesUpdate) (bool, error) {
	return m.prefs.UpdateUserPreferences(ctx, userID, update)
}

// UpdateUserSettings merges an explicit theme with the optional fields in
// extra. The explicit theme wins when both carry one; an empty theme means
// not supplied.
func (m *PreferencesManager) UpdateUserSettings(ctx context.Context, userID uint, theme entities.Theme, extra entities.UserPreferencesUpdate) (bool, error) {
	if theme != "" {
		extra.Theme = &theme
	}
	return m.prefs.UpdateUserPreferences(ctx, userID, extra)
}

func (m *PreferencesManager) SetTheme(ctx context.Context, userID uint, theme entities.Theme) (bool, error) {
	return m.prefs.UpdateUserPreferences(ctx, userID, entities.UserPreferencesUpdate{Theme: &theme})
}

func (m *PreferencesManager) SetAutoSave(ctx context.Context, userID uint, enabled bool) (bool, error) {
	return m.prefs.UpdateUserPreferences(ctx, userID, entities.UserPreferencesUpdate{AutoSave: &enabled})
}

// GetAllSettings returns the combined record shown on the settings screen.
func (m *PreferencesManager) GetAllSettings(ctx context.Context, username string) (*entities.AllSettings, error) {
	return m.prefs.GetAllSettings(ctx, username)
}
