package entities

import "time"

// AllSettings is the combined user, UI preference and primary render
// configuration record shown on the settings screen. Preference fields are
// nil when the corresponding row is missing.
type AllSettings struct {
	UserID    uint      `json:"user_id" yaml:"user_id"`
	Username  string    `json:"username" yaml:"username"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	Theme    *Theme `json:"theme" yaml:"theme"`
	AutoSave *bool  `json:"auto_save" yaml:"auto_save"`

	RenderConfigID  *uint    `json:"render_config_id" yaml:"render_config_id"`
	RenderName      *string  `json:"render_name" yaml:"render_name"`
	ImageWidth      *int     `json:"image_width" yaml:"image_width"`
	AspectRatio     *float64 `json:"aspect_ratio" yaml:"aspect_ratio"`
	FocusDistance   *float64 `json:"focus_distance" yaml:"focus_distance"`
	Aperture        *float64 `json:"aperture" yaml:"aperture"`
	MaxDepth        *int     `json:"max_depth" yaml:"max_depth"`
	SamplesPerPixel *int     `json:"samples_per_pixel" yaml:"samples_per_pixel"`
}

// HasPreferences reports whether a user_preferences row was found.
func (s *AllSettings) HasPreferences() bool {
	return s.Theme != nil
}

// HasRenderConfig reports whether a render configuration was found.
func (s *AllSettings) HasRenderConfig() bool {
	return s.RenderConfigID != nil
}
