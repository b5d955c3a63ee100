package entities

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// Defaults of the render configuration created at sign-up
const (
	DefaultRenderName      = "Default"
	DefaultImageWidth      = 1920
	DefaultAspectRatio     = 16.0 / 9.0
	DefaultFocusDistance   = 10.0
	DefaultAperture        = 1.8
	DefaultMaxDepth        = 50
	DefaultSamplesPerPixel = 100

	MaxImageWidth     = 16384
	MaxRenderNameSize = 100
)

var ErrInvalidRenderSettings = errors.New("invalid render settings")

type RenderPreferences struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	ImageWidth      int       `gorm:"not null" json:"image_width"`
	AspectRatio     float64   `gorm:"not null" json:"aspect_ratio"`
	FocusDistance   float64   `gorm:"not null" json:"focus_distance"`
	Aperture        float64   `gorm:"not null" json:"aperture"`
	MaxDepth        int       `gorm:"not null" json:"max_depth"`
	SamplesPerPixel int       `gorm:"not null" json:"samples_per_pixel"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (RenderPreferences) TableName() string {
	return "render_preferences"
}

// DefaultRenderPreferences returns the primary configuration created with a user.
func DefaultRenderPreferences(userID uint) RenderPreferences {
	return RenderPreferences{
		UserID:          userID,
		Name:            DefaultRenderName,
		ImageWidth:      DefaultImageWidth,
		AspectRatio:     DefaultAspectRatio,
		FocusDistance:   DefaultFocusDistance,
		Aperture:        DefaultAperture,
		MaxDepth:        DefaultMaxDepth,
		SamplesPerPixel: DefaultSamplesPerPixel,
	}
}

// RenderPreferencesUpdate is a partial update of a render configuration.
// The set of recognized fields is fixed by this struct; nil fields are not written.
type RenderPreferencesUpdate struct {
	Name            *string
	ImageWidth      *int
	AspectRatio     *float64
	FocusDistance   *float64
	Aperture        *float64
	MaxDepth        *int
	SamplesPerPixel *int
}

func (u RenderPreferencesUpdate) IsEmpty() bool {
	return len(u.Columns()) == 0
}

// Validate checks every supplied field and reports all violations at once.
func (u RenderPreferencesUpdate) Validate() error {
	var errs []error
	if u.Name != nil {
		if n := utf8.RuneCountInString(*u.Name); n == 0 || n > MaxRenderNameSize {
			errs = append(errs, fmt.Errorf("name must be 1-%d characters", MaxRenderNameSize))
		}
	}
	if u.ImageWidth != nil && (*u.ImageWidth < 1 || *u.ImageWidth > MaxImageWidth) {
		errs = append(errs, fmt.Errorf("image_width must be between 1 and %d", MaxImageWidth))
	}
	if u.AspectRatio != nil && !(*u.AspectRatio > 0) {
		errs = append(errs, errors.New("aspect_ratio must be positive"))
	}
	if u.FocusDistance != nil && !(*u.FocusDistance >= 0) {
		errs = append(errs, errors.New("focus_distance must not be negative"))
	}
	if u.Aperture != nil && !(*u.Aperture > 0) {
		errs = append(errs, errors.New("aperture must be positive"))
	}
	if u.MaxDepth != nil && *u.MaxDepth < 1 {
		errs = append(errs, errors.New("max_depth must be at least 1"))
	}
	if u.SamplesPerPixel != nil && *u.SamplesPerPixel < 1 {
		errs = append(errs, errors.New("samples_per_pixel must be at least 1"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidRenderSettings, errors.Join(errs...))
}

// Columns maps the supplied fields to their column names.
func (u RenderPreferencesUpdate) Columns() map[string]any {
	cols := make(map[string]any, 7)
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.ImageWidth != nil {
		cols["image_width"] = *u.ImageWidth
	}
	if u.AspectRatio != nil {
		cols["aspect_ratio"] = *u.AspectRatio
	}
	if u.FocusDistance != nil {
		cols["focus_distance"] = *u.FocusDistance
	}
	if u.Aperture != nil {
		cols["aperture"] = *u.Aperture
	}
	if u.MaxDepth != nil {
		cols["max_depth"] = *u.MaxDepth
	}
	if u.SamplesPerPixel != nil {
		cols["samples_per_pixel"] = *u.SamplesPerPixel
	}
	return cols
}

// ApplyTo copies the supplied fields onto r.
func (u RenderPreferencesUpdate) ApplyTo(r *RenderPreferences) {
	if u.Name != nil {
		r.Name = *u.Name
	}
	if u.ImageWidth != nil {
		r.ImageWidth = *u.ImageWidth
	}
	if u.AspectRatio != nil {
		r.AspectRatio = *u.AspectRatio
	}
	if u.FocusDistance != nil {
		r.FocusDistance = *u.FocusDistance
	}
	if u.Aperture != nil {
		r.Aperture = *u.Aperture
	}
	if u.MaxDepth != nil {
		r.MaxDepth = *u.MaxDepth
	}
	if u.SamplesPerPixel != nil {
		r.SamplesPerPixel = *u.SamplesPerPixel
	}
}
