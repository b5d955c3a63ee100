package services

import (
	"context"

	"github.com/threedev/studio/internal/entities"
)

// RenderManager is the render configuration surface of the settings screen.
type RenderManager struct {
	render RenderStore
}

// NewRenderManager creates a new RenderManager.
func NewRenderManager(render RenderStore) *RenderManager {
	return &RenderManager{render: render}
}

func (m *RenderManager) CreateRenderSettings(ctx context.Context, userID uint, name string, settings entities.RenderPreferencesUpdate) (*entities.RenderPreferences, error) {
	return m.render.CreateRenderConfig(ctx, userID, name, settings)
}

func (m *RenderManager) GetSettings(ctx context.Context, userID, configID uint) (*entities.RenderPreferences, error) {
	return m.render.GetRenderConfig(ctx, userID, configID)
}

// GetPrimarySettings returns the configuration created with the account.
func (m *RenderManager) GetPrimarySettings(ctx context.Context, userID uint) (*entities.RenderPreferences, error) {
	return m.render.GetPrimaryRenderConfig(ctx, userID)
}

// GetUserSettings lists every configuration of the user, newest first.
func (m *RenderManager) GetUserSettings(ctx context.Context, userID uint) ([]entities.RenderPreferences, error) {
	return m.render.GetUserRenderConfigs(ctx, userID)
}

func (m *RenderManager) UpdateSettings(ctx context.Context, userID, configID uint, update entities.RenderPreferencesUpdate) (bool, error) {
	return m.render.UpdateRenderConfig(ctx, userID, configID, update)
}

func (m *RenderManager) UpdatePrimarySettings(ctx context.Context, userID uint, update entities.RenderPreferencesUpdate) (bool, error) {
	return m.render.UpdatePrimaryRenderConfig(ctx, userID, update)
}

func (m *RenderManager) DeleteSettings(ctx context.Context, userID, configID uint) (bool, error) {
	return m.render.DeleteRenderConfig(ctx, userID, configID)
}
