package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/threedev/studio/internal/entities"
)

// Form keys accepted by the settings screen. Other keys are ignored.
const (
	FieldTheme    = "theme"
	FieldAutoSave = "auto_save"

	FieldName            = "name"
	FieldImageWidth      = "image_width"
	FieldAspectRatio     = "aspect_ratio"
	FieldFocusDistance   = "focus_distance"
	FieldAperture        = "aperture"
	FieldMaxDepth        = "max_depth"
	FieldSamplesPerPixel = "samples_per_pixel"
)

// RenderFields lists the render form keys in display order.
var RenderFields = []string{
	FieldName,
	FieldImageWidth,
	FieldAspectRatio,
	FieldFocusDistance,
	FieldAperture,
	FieldMaxDepth,
	FieldSamplesPerPixel,
}

// PreferenceFields lists the preference form keys in display order.
var PreferenceFields = []string{FieldTheme, FieldAutoSave}

var ErrInvalidAspectRatio = errors.New("aspect ratio must look like 16:9 or 1.78")

// FieldError is one unparseable form value.
type FieldError struct {
	Field   string
	Value   string
	Message string
}

// FormError lists every field of a form that could not be parsed.
type FormError struct {
	Fields []FieldError
}

func (e *FormError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "invalid form input: " + strings.Join(parts, "; ")
}

func (e *FormError) add(field, value, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Value: value, Message: message})
}

func (e *FormError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ParsePreferencesForm converts raw form values into a preferences update.
// Blank values are treated as not supplied.
func ParsePreferencesForm(form map[string]string) (entities.UserPreferencesUpdate, error) {
	var update entities.UserPreferencesUpdate
	formErr := &FormError{}

	if raw, ok := value(form, FieldTheme); ok {
		theme, err := entities.ParseTheme(raw)
		if err != nil {
			formErr.add(FieldTheme, raw, "must be one of light, dark or system")
		} else {
			update.Theme = &theme
		}
	}
	if raw, ok := value(form, FieldAutoSave); ok {
		enabled, err := parseBool(raw)
		if err != nil {
			formErr.add(FieldAutoSave, raw, "must be on or off")
		} else {
			update.AutoSave = &enabled
		}
	}

	return update, formErr.orNil()
}

// ParseRenderForm converts raw form values into a render update. Numbers
// that do not parse are reported together and nothing is returned for them.
// Blank values are treated as not supplied.
func ParseRenderForm(form map[string]string) (entities.RenderPreferencesUpdate, error) {
	var update entities.RenderPreferencesUpdate
	formErr := &FormError{}

	if raw, ok := value(form, FieldName); ok {
		update.Name = &raw
	}

	parseInt := func(field string, dest **int) {
		raw, ok := value(form, field)
		if !ok {
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			formErr.add(field, raw, "must be a whole number")
			return
		}
		*dest = &n
	}
	parseFloat := func(field string, dest **float64) {
		raw, ok := value(form, field)
		if !ok {
			return
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			formErr.add(field, raw, "must be a number")
			return
		}
		*dest = &f
	}

	parseInt(FieldImageWidth, &update.ImageWidth)
	if raw, ok := value(form, FieldAspectRatio); ok {
		ratio, err := ParseAspectRatio(raw)
		if err != nil {
			formErr.add(FieldAspectRatio, raw, "must look like 16:9 or 1.78")
		} else {
			update.AspectRatio = &ratio
		}
	}
	parseFloat(FieldFocusDistance, &update.FocusDistance)
	parseFloat(FieldAperture, &update.Aperture)
	parseInt(FieldMaxDepth, &update.MaxDepth)
	parseInt(FieldSamplesPerPixel, &update.SamplesPerPixel)

	if err := formErr.orNil(); err != nil {
		return entities.RenderPreferencesUpdate{}, err
	}
	return update, nil
}

// ParseAspectRatio accepts "W:H", "W/H" or a plain positive decimal.
func ParseAspectRatio(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ":/"); i >= 0 {
		w, errW := strconv.ParseFloat(strings.TrimSpace(s[:i]), 64)
		h, errH := strconv.ParseFloat(strings.TrimSpace(s[i+1:]), 64)
		if errW != nil || errH != nil || !(w > 0) || !(h > 0) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAspectRatio, s)
		}
		return w / h, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !(f > 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAspectRatio, s)
	}
	return f, nil
}

// FormatAspectRatio renders the common ratios symbolically.
func FormatAspectRatio(f float64) string {
	for _, r := range [][2]float64{{16, 9}, {4, 3}, {1, 1}, {21, 9}} {
		if f == r[0]/r[1] {
			return fmt.Sprintf("%g:%g", r[0], r[1])
		}
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func value(form map[string]string, key string) (string, bool) {
	raw, ok := form[key]
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "y", "enabled":
		return true, nil
	case "off", "no", "n", "disabled":
		return false, nil
	}
	return strconv.ParseBool(s)
}
