package entities

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Defaults applied when a user is created
const (
	DefaultTheme    = ThemeLight
	DefaultAutoSave = false
)

var ErrInvalidTheme = errors.New("theme must be one of light, dark or system")

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// ParseTheme accepts a theme name in any letter case.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
	return t, nil
}

type UserPreferences struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Theme     Theme     `gorm:"size:16;not null" json:"theme"`
	AutoSave  bool      `gorm:"not null" json:"auto_save"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}

// DefaultUserPreferences returns the row created alongside a new user.
func DefaultUserPreferences(userID uint) UserPreferences {
	return UserPreferences{
		UserID:   userID,
		Theme:    DefaultTheme,
		AutoSave: DefaultAutoSave,
	}
}

// UserPreferencesUpdate is a partial update; nil fields are not written.
type UserPreferencesUpdate struct {
	Theme    *Theme
	AutoSave *bool
}

func (u UserPreferencesUpdate) IsEmpty() bool {
	return u.Theme == nil && u.AutoSave == nil
}

func (u UserPreferencesUpdate) Validate() error {
	if u.Theme != nil && !u.Theme.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, string(*u.Theme))
	}
	return nil
}

// Columns maps the supplied fields to their column names.
func (u UserPreferencesUpdate) Columns() map[string]any {
	cols := make(map[string]any, 2)
	if u.Theme != nil {
		cols["theme"] = *u.Theme
	}
	if u.AutoSave != nil {
		cols["auto_save"] = *u.AutoSave
	}
	return cols
}
