package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/threedev/studio/internal/entities"
	"github.com/threedev/studio/internal/entrypoint"
	"github.com/threedev/studio/internal/services"
)

// SettingsCommand shows the settings screen: account, UI preferences and
// the primary render configuration
type SettingsCommand struct {
	app     *entrypoint.App
	console *Console

	YAML bool
}

func NewSettingsCommand(app *entrypoint.App, console *Console) *SettingsCommand {
	return &SettingsCommand{app: app, console: console}
}

func (cmd *SettingsCommand) ParseFlags(args []string) error {
	fs := cmd.console.newFlagSet("settings", "settings [options]")
	fs.BoolVar(&cmd.YAML, "yaml", false, "Print the settings as YAML")
	return fs.Parse(args)
}

func (cmd *SettingsCommand) Run(ctx context.Context) error {
	user, err := requireUser(ctx, cmd.app)
	if err != nil {
		return err
	}
	settings, err := cmd.app.Preferences.GetAllSettings(ctx, user.Username)
	if err != nil {
		return err
	}

	if cmd.YAML {
		enc := yaml.NewEncoder(cmd.console.Out)
		enc.SetIndent(2)
		if err := enc.Encode(settings); err != nil {
			return err
		}
		return enc.Close()
	}

	printSettings(cmd.console.Out, settings)
	return nil
}

func printSettings(out io.Writer, s *entities.AllSettings) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Account\t%s (id %d)\n", s.Username, s.UserID)

	fmt.Fprintln(w, "\nAppearance\t")
	if s.HasPreferences() {
		fmt.Fprintf(w, "  Theme\t%s\n", *s.Theme)
		if s.AutoSave != nil {
			fmt.Fprintf(w, "  Auto save\t%s\n", onOff(*s.AutoSave))
		}
	} else {
		fmt.Fprintln(w, "  (no preferences stored)\t")
	}

	fmt.Fprintln(w, "\nRender\t")
	if !s.HasRenderConfig() {
		fmt.Fprintln(w, "  (no render configuration stored)\t")
		return
	}
	fmt.Fprintf(w, "  Name\t%s (#%d)\n", deref(s.RenderName), deref(s.RenderConfigID))
	fmt.Fprintf(w, "  Image width\t%d\n", deref(s.ImageWidth))
	fmt.Fprintf(w, "  Aspect ratio\t%s\n", services.FormatAspectRatio(deref(s.AspectRatio)))
	fmt.Fprintf(w, "  Focus distance\t%g\n", deref(s.FocusDistance))
	fmt.Fprintf(w, "  Aperture\tf/%g\n", deref(s.Aperture))
	fmt.Fprintf(w, "  Max depth\t%d\n", deref(s.MaxDepth))
	fmt.Fprintf(w, "  Samples per pixel\t%d\n", deref(s.SamplesPerPixel))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// PrefsCommand updates the UI preferences of the signed-in account
type PrefsCommand struct {
	app     *entrypoint.App
	console *Console

	Form map[string]string
}

func NewPrefsCommand(app *entrypoint.App, console *Console) *PrefsCommand {
	return &PrefsCommand{app: app, console: console}
}

func (cmd *PrefsCommand) ParseFlags(args []string) error {
	fs := cmd.console.newFlagSet("prefs", "prefs [-theme light|dark|system] [-auto-save on|off]")
	fs.String("theme", "", "Theme: light, dark or system")
	fs.String("auto-save", "", "Scheduled backups of the store: on or off")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.Form = visitedForm(fs, map[string]string{
		"theme":     services.FieldTheme,
		"auto-save": services.FieldAutoSave,
	})
	return nil
}

func (cmd *PrefsCommand) Run(ctx context.Context) error {
	c := cmd.console
	user, err := requireUser(ctx, cmd.app)
	if err != nil {
		return err
	}

	update, err := services.ParsePreferencesForm(cmd.Form)
	if err != nil {
		return reportFormError(c, err)
	}

	ok, err := cmd.app.Preferences.UpdatePreferences(ctx, user.ID, update)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.Out, "No changes.")
		return nil
	}

	prefs, err := cmd.app.Preferences.GetPreferences(ctx, user.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "Preferences saved: theme %s, auto save %s.\n", prefs.Theme, onOff(prefs.AutoSave))
	return nil
}

// visitedForm collects the flags that were set on the command line, keyed
// by form field.
func visitedForm(fs *flag.FlagSet, fields map[string]string) map[string]string {
	form := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		if field, ok := fields[f.Name]; ok {
			form[field] = f.Value.String()
		}
	})
	return form
}

func reportFormError(c *Console, err error) error {
	var formErr *services.FormError
	if !errors.As(err, &formErr) {
		return err
	}
	msgs := make([]string, len(formErr.Fields))
	for i, f := range formErr.Fields {
		msgs[i] = fmt.Sprintf("%s %q %s", f.Field, f.Value, f.Message)
	}
	return c.reportRejected(msgs)
}
