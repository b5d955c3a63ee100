// Package preferences provides database operations for UI preferences and
// render configurations.
//
// A user may own several render configurations. The one created with the
// account (the oldest) is the primary configuration; calls that take no
// configuration ID address it.
//
// # Usage
//
//	repo := preferences.NewRepository(db)
//	theme := entities.ThemeDark
//	ok, err := repo.UpdateUserPreferences(ctx, userID, entities.UserPreferencesUpdate{Theme: &theme})
package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/threedev/studio/internal/entities"
)

var ErrNotFound = errors.New("not found")

const (
	primaryOrder = "created_at ASC, id ASC"
	newestFirst  = "created_at DESC, id DESC"
)

// Repository handles all preference database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new preferences repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserPreferences retrieves the UI preferences of a user.
func (r *Repository) GetUserPreferences(ctx context.Context, userID uint) (*entities.UserPreferences, error) {
	var prefs entities.UserPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &prefs, nil
}

// UpdateUserPreferences writes the supplied fields only. It returns false
// when nothing was supplied or the user has no preferences row.
func (r *Repository) UpdateUserPreferences(ctx context.Context, userID uint, update entities.UserPreferencesUpdate) (bool, error) {
	if update.IsEmpty() {
		return false, nil
	}
	if err := update.Validate(); err != nil {
		return false, err
	}

	cols := update.Columns()
	cols["updated_at"] = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&entities.UserPreferences{}).
		Where("user_id = ?", userID).
		Updates(cols)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update preferences: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// CreateRenderConfig adds a named render configuration. Fields not supplied
// take the defaults.
func (r *Repository) CreateRenderConfig(ctx context.Context, userID uint, name string, settings entities.RenderPreferencesUpdate) (*entities.RenderPreferences, error) {
	settings.Name = &name
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	config := entities.DefaultRenderPreferences(userID)
	settings.ApplyTo(&config)

	if err := r.db.WithContext(ctx).Create(&config).Error; err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to create render configuration: %w", err)
	}
	return &config, nil
}

// GetRenderConfig retrieves one configuration owned by the user.
func (r *Repository) GetRenderConfig(ctx context.Context, userID, configID uint) (*entities.RenderPreferences, error) {
	var config entities.RenderPreferences
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", configID, userID).
		First(&config).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &config, nil
}

// GetPrimaryRenderConfig retrieves the user's oldest configuration.
func (r *Repository) GetPrimaryRenderConfig(ctx context.Context, userID uint) (*entities.RenderPreferences, error) {
	var config entities.RenderPreferences
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(primaryOrder).
		Take(&config).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &config, nil
}

// GetUserRenderConfigs lists the user's configurations, newest first.
func (r *Repository) GetUserRenderConfigs(ctx context.Context, userID uint) ([]entities.RenderPreferences, error) {
	configs := []entities.RenderPreferences{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(newestFirst).
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list render configurations: %w", err)
	}
	return configs, nil
}

// UpdateRenderConfig writes the supplied fields of one configuration.
func (r *Repository) UpdateRenderConfig(ctx context.Context, userID, configID uint, update entities.RenderPreferencesUpdate) (bool, error) {
	return r.updateRender(ctx, update, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id = ? AND user_id = ?", configID, userID)
	})
}

// UpdatePrimaryRenderConfig writes the supplied fields of the primary configuration.
func (r *Repository) UpdatePrimaryRenderConfig(ctx context.Context, userID uint, update entities.RenderPreferencesUpdate) (bool, error) {
	return r.updateRender(ctx, update, func(tx *gorm.DB) *gorm.DB {
		primary := r.db.Model(&entities.RenderPreferences{}).
			Select("id").
			Where("user_id = ?", userID).
			Order(primaryOrder).
			Limit(1)
		return tx.Where("id = (?)", primary)
	})
}

func (r *Repository) updateRender(ctx context.Context, update entities.RenderPreferencesUpdate, scope func(*gorm.DB) *gorm.DB) (bool, error) {
	if update.IsEmpty() {
		return false, nil
	}
	if err := update.Validate(); err != nil {
		return false, err
	}

	cols := update.Columns()
	cols["updated_at"] = time.Now().UTC()

	result := scope(r.db.WithContext(ctx).Model(&entities.RenderPreferences{})).Updates(cols)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update render configuration: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteRenderConfig removes one configuration owned by the user.
func (r *Repository) DeleteRenderConfig(ctx context.Context, userID, configID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", configID, userID).
		Delete(&entities.RenderPreferences{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete render configuration: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetAllSettings reads the user, its UI preferences and its primary render
// configuration in one query. Missing preference rows leave the matching
// fields nil.
func (r *Repository) GetAllSettings(ctx context.Context, username string) (*entities.AllSettings, error) {
	var settings entities.AllSettings
	result := r.db.WithContext(ctx).
		Table("users AS u").
		Select(`u.id AS user_id, u.username, u.created_at,
			p.theme, p.auto_save,
			rp.id AS render_config_id, rp.name AS render_name, rp.image_width,
			rp.aspect_ratio, rp.focus_distance, rp.aperture, rp.max_depth,
			rp.samples_per_pixel`).
		Joins("LEFT JOIN user_preferences AS p ON p.user_id = u.id").
		Joins(`LEFT JOIN render_preferences AS rp ON rp.id = (
			SELECT id FROM render_preferences
			WHERE user_id = u.id
			ORDER BY ` + primaryOrder + ` LIMIT 1)`).
		Where("u.username = ?", username).
		Limit(1).
		Scan(&settings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to read settings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &settings, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
