package exporters

import (
	"context"

	"github.com/threedev/studio/internal/entities"
)

// SettingsSource provides the records included in a settings export.
type SettingsSource interface {
	GetAllSettings(ctx context.Context, username string) (*entities.AllSettings, error)
	GetUserRenderConfigs(ctx context.Context, userID uint) ([]entities.RenderPreferences, error)
}

type ExportResult struct {
	Path          string `json:"path"`
	Username      string `json:"username"`
	RenderConfigs int    `json:"render_configs"`
}
