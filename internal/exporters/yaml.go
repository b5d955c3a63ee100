package exporters

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/threedev/studio/internal/entities"
)

// Bumped whenever the document layout changes
const SettingsDocumentVersion = 1

// SettingsDocument is the on-disk layout of a settings export.
type SettingsDocument struct {
	Version       int             `yaml:"version"`
	ExportedAt    time.Time       `yaml:"exported_at"`
	Account       AccountSection  `yaml:"account"`
	Preferences   *PrefsSection   `yaml:"preferences,omitempty"`
	RenderConfigs []RenderSection `yaml:"render_configs"`
}

type AccountSection struct {
	Username  string    `yaml:"username"`
	CreatedAt time.Time `yaml:"created_at"`
}

type PrefsSection struct {
	Theme    entities.Theme `yaml:"theme"`
	AutoSave bool           `yaml:"auto_save"`
}

type RenderSection struct {
	Name            string    `yaml:"name"`
	Primary         bool      `yaml:"primary,omitempty"`
	ImageWidth      int       `yaml:"image_width"`
	AspectRatio     float64   `yaml:"aspect_ratio"`
	FocusDistance   float64   `yaml:"focus_distance"`
	Aperture        float64   `yaml:"aperture"`
	MaxDepth        int       `yaml:"max_depth"`
	SamplesPerPixel int       `yaml:"samples_per_pixel"`
	CreatedAt       time.Time `yaml:"created_at"`
}

// YAMLExporter writes a user's preferences and render configurations as YAML.
// Credentials are never part of the document.
type YAMLExporter struct {
	source SettingsSource
	now    func() time.Time
}

func NewYAMLExporter(source SettingsSource) *YAMLExporter {
	return &YAMLExporter{source: source, now: time.Now}
}

// Build collects the document for username.
func (e *YAMLExporter) Build(ctx context.Context, username string) (*SettingsDocument, error) {
	settings, err := e.source.GetAllSettings(ctx, username)
	if err != nil {
		return nil, err
	}
	configs, err := e.source.GetUserRenderConfigs(ctx, settings.UserID)
	if err != nil {
		return nil, err
	}

	doc := &SettingsDocument{
		Version:    SettingsDocumentVersion,
		ExportedAt: e.now().UTC(),
		Account: AccountSection{
			Username:  settings.Username,
			CreatedAt: settings.CreatedAt.UTC(),
		},
		RenderConfigs: make([]RenderSection, 0, len(configs)),
	}
	if settings.HasPreferences() {
		doc.Preferences = &PrefsSection{Theme: *settings.Theme}
		if settings.AutoSave != nil {
			doc.Preferences.AutoSave = *settings.AutoSave
		}
	}
	for _, c := range configs {
		doc.RenderConfigs = append(doc.RenderConfigs, RenderSection{
			Name:            c.Name,
			Primary:         settings.RenderConfigID != nil && *settings.RenderConfigID == c.ID,
			ImageWidth:      c.ImageWidth,
			AspectRatio:     c.AspectRatio,
			FocusDistance:   c.FocusDistance,
			Aperture:        c.Aperture,
			MaxDepth:        c.MaxDepth,
			SamplesPerPixel: c.SamplesPerPixel,
			CreatedAt:       c.CreatedAt.UTC(),
		})
	}
	return doc, nil
}

// Export writes the document for username to w.
func (e *YAMLExporter) Export(ctx context.Context, username string, w io.Writer) (ExportResult, error) {
	doc, err := e.Build(ctx, username)
	if err != nil {
		return ExportResult{}, err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return ExportResult{}, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return ExportResult{}, fmt.Errorf("failed to encode settings: %w", err)
	}

	return ExportResult{Username: username, RenderConfigs: len(doc.RenderConfigs)}, nil
}

// ExportToFile writes the document for username to path, replacing any
// existing file.
func (e *YAMLExporter) ExportToFile(ctx context.Context, username, path string) (ExportResult, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to create export file: %w", err)
	}

	result, err := e.Export(ctx, username, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write export file: %w", closeErr)
	}
	if err != nil {
		return ExportResult{}, err
	}

	result.Path = path
	return result, nil
}
