package entities

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestParseTheme(t *testing.T) {
	tests := []struct {
		input   string
		want    Theme
		wantErr bool
	}{
		{"light", ThemeLight, false},
		{"Dark", ThemeDark, false},
		{" SYSTEM ", ThemeSystem, false},
		{"solarized", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTheme(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidTheme))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultRows(t *testing.T) {
	prefs := DefaultUserPreferences(7)
	assert.Equal(t, uint(7), prefs.UserID)
	assert.Equal(t, ThemeLight, prefs.Theme)
	assert.False(t, prefs.AutoSave)

	render := DefaultRenderPreferences(7)
	assert.Equal(t, uint(7), render.UserID)
	assert.Equal(t, "Default", render.Name)
	assert.Equal(t, 1920, render.ImageWidth)
	assert.Equal(t, 16.0/9.0, render.AspectRatio)
	assert.Equal(t, 100, render.SamplesPerPixel)
	assert.Equal(t, 50, render.MaxDepth)
}

func TestUserPreferencesUpdate(t *testing.T) {
	assert.True(t, UserPreferencesUpdate{}.IsEmpty())

	upd := UserPreferencesUpdate{Theme: ptr(ThemeDark)}
	assert.False(t, upd.IsEmpty())
	assert.NoError(t, upd.Validate())
	assert.Equal(t, map[string]any{"theme": ThemeDark}, upd.Columns())

	bad := UserPreferencesUpdate{Theme: ptr(Theme("neon"))}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidTheme)
}

func TestRenderPreferencesUpdate_Validate(t *testing.T) {
	valid := RenderPreferencesUpdate{
		Name:            ptr("Preview"),
		ImageWidth:      ptr(640),
		AspectRatio:     ptr(4.0 / 3.0),
		FocusDistance:   ptr(0.0),
		Aperture:        ptr(2.8),
		MaxDepth:        ptr(8),
		SamplesPerPixel: ptr(16),
	}
	assert.NoError(t, valid.Validate())

	invalid := RenderPreferencesUpdate{
		Name:            ptr(""),
		ImageWidth:      ptr(0),
		AspectRatio:     ptr(-1.0),
		Aperture:        ptr(0.0),
		MaxDepth:        ptr(0),
		SamplesPerPixel: ptr(-5),
	}
	err := invalid.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRenderSettings)
	for _, field := range []string{"name", "image_width", "aspect_ratio", "aperture", "max_depth", "samples_per_pixel"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestRenderPreferencesUpdate_ColumnsAndApply(t *testing.T) {
	upd := RenderPreferencesUpdate{ImageWidth: ptr(3840), Aperture: ptr(1.4)}

	assert.Equal(t, map[string]any{"image_width": 3840, "aperture": 1.4}, upd.Columns())
	assert.True(t, RenderPreferencesUpdate{}.IsEmpty())

	r := DefaultRenderPreferences(1)
	upd.ApplyTo(&r)
	assert.Equal(t, 3840, r.ImageWidth)
	assert.Equal(t, 1.4, r.Aperture)
	assert.Equal(t, DefaultSamplesPerPixel, r.SamplesPerPixel)
}
