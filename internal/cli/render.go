package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/threedev/studio/internal/database/preferences"
	"github.com/threedev/studio/internal/entities"
	"github.com/threedev/studio/internal/entrypoint"
	"github.com/threedev/studio/internal/services"
)

// Render option flags and the form fields they fill
var renderFlagFields = map[string]string{
	"name":     services.FieldName,
	"width":    services.FieldImageWidth,
	"aspect":   services.FieldAspectRatio,
	"focus":    services.FieldFocusDistance,
	"aperture": services.FieldAperture,
	"depth":    services.FieldMaxDepth,
	"spp":      services.FieldSamplesPerPixel,
}

// RenderCommand manages the render configurations of the signed-in account
type RenderCommand struct {
	app     *entrypoint.App
	console *Console

	Action   string
	ConfigID uint // 0 addresses the primary configuration
	Form     map[string]string
}

func NewRenderCommand(app *entrypoint.App, console *Console) *RenderCommand {
	return &RenderCommand{app: app, console: console}
}

func (cmd *RenderCommand) ParseFlags(args []string) error {
	fs := cmd.console.newFlagSet("render", "render <list|show|create|set|delete> [options]")
	fs.UintVar(&cmd.ConfigID, "id", 0, "Configuration ID (defaults to the primary configuration)")
	fs.String("name", "", "Configuration name")
	fs.String("width", "", "Image width in pixels")
	fs.String("aspect", "", "Aspect ratio, e.g. 16:9, 4:3, 1:1, 21:9 or 1.85")
	fs.String("focus", "", "Focus distance")
	fs.String("aperture", "", "Aperture (f-number)")
	fs.String("depth", "", "Maximum ray bounce depth")
	fs.String("spp", "", "Samples per pixel")

	if len(args) == 0 {
		fs.Usage()
		return errors.New("missing action")
	}
	cmd.Action = args[0]
	switch cmd.Action {
	case "list", "show", "create", "set", "delete":
	default:
		fs.Usage()
		return fmt.Errorf("unknown action %q", cmd.Action)
	}

	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	cmd.Form = visitedForm(fs, renderFlagFields)
	return nil
}

func (cmd *RenderCommand) Run(ctx context.Context) error {
	user, err := requireUser(ctx, cmd.app)
	if err != nil {
		return err
	}

	switch cmd.Action {
	case "list":
		return cmd.list(ctx, user.ID)
	case "show":
		return cmd.show(ctx, user.ID)
	case "create":
		return cmd.create(ctx, user.ID)
	case "set":
		return cmd.set(ctx, user.ID)
	case "delete":
		return cmd.delete(ctx, user.ID)
	}
	return fmt.Errorf("unknown action %q", cmd.Action)
}

func (cmd *RenderCommand) list(ctx context.Context, userID uint) error {
	out := cmd.console.Out
	configs, err := cmd.app.Render.GetUserSettings(ctx, userID)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		fmt.Fprintln(out, "No render configurations.")
		return nil
	}
	primary, err := cmd.app.Render.GetPrimarySettings(ctx, userID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tWIDTH\tASPECT\tSPP\tCREATED\t")
	for _, c := range configs {
		name := c.Name
		if c.ID == primary.ID {
			name += " *"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%d\t%s\t\n",
			c.ID, name, c.ImageWidth, services.FormatAspectRatio(c.AspectRatio),
			c.SamplesPerPixel, c.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (cmd *RenderCommand) show(ctx context.Context, userID uint) error {
	config, err := cmd.lookup(ctx, userID)
	if err != nil {
		return err
	}
	printRenderConfig(cmd.console.Out, config)
	return nil
}

func (cmd *RenderCommand) create(ctx context.Context, userID uint) error {
	c := cmd.console
	name := strings.TrimSpace(cmd.Form[services.FieldName])
	if name == "" {
		return c.reportRejected([]string{"-name is required"})
	}

	update, err := services.ParseRenderForm(cmd.Form)
	if err != nil {
		return reportFormError(c, err)
	}

	config, err := cmd.app.Render.CreateRenderSettings(ctx, userID, name, update)
	if errors.Is(err, entities.ErrInvalidRenderSettings) {
		return c.reportRejected([]string{err.Error()})
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "Created render configuration %q (#%d).\n", config.Name, config.ID)
	return nil
}

func (cmd *RenderCommand) set(ctx context.Context, userID uint) error {
	c := cmd.console
	update, err := services.ParseRenderForm(cmd.Form)
	if err != nil {
		return reportFormError(c, err)
	}

	var ok bool
	if cmd.ConfigID == 0 {
		ok, err = cmd.app.Render.UpdatePrimarySettings(ctx, userID, update)
	} else {
		ok, err = cmd.app.Render.UpdateSettings(ctx, userID, cmd.ConfigID, update)
	}
	if errors.Is(err, entities.ErrInvalidRenderSettings) {
		return c.reportRejected([]string{err.Error()})
	}
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.Out, "No changes.")
		return nil
	}

	config, err := cmd.lookup(ctx, userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.Out, "Render settings saved.")
	printRenderConfig(c.Out, config)
	return nil
}

func (cmd *RenderCommand) delete(ctx context.Context, userID uint) error {
	c := cmd.console
	if cmd.ConfigID == 0 {
		return c.reportRejected([]string{"-id is required"})
	}

	configs, err := cmd.app.Render.GetUserSettings(ctx, userID)
	if err != nil {
		return err
	}
	if len(configs) == 1 && configs[0].ID == cmd.ConfigID {
		return c.reportRejected([]string{"The only render configuration cannot be deleted"})
	}

	ok, err := cmd.app.Render.DeleteSettings(ctx, userID, cmd.ConfigID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("render configuration #%d: %w", cmd.ConfigID, preferences.ErrNotFound)
	}
	fmt.Fprintf(c.Out, "Deleted render configuration #%d.\n", cmd.ConfigID)
	return nil
}

func (cmd *RenderCommand) lookup(ctx context.Context, userID uint) (*entities.RenderPreferences, error) {
	var (
		config *entities.RenderPreferences
		err    error
	)
	if cmd.ConfigID == 0 {
		config, err = cmd.app.Render.GetPrimarySettings(ctx, userID)
	} else {
		config, err = cmd.app.Render.GetSettings(ctx, userID, cmd.ConfigID)
	}
	if errors.Is(err, preferences.ErrNotFound) {
		return nil, errors.New("render configuration not found")
	}
	return config, err
}

func printRenderConfig(out io.Writer, c *entities.RenderPreferences) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "Name\t%s (#%d)\n", c.Name, c.ID)
	fmt.Fprintf(w, "Image width\t%d\n", c.ImageWidth)
	fmt.Fprintf(w, "Aspect ratio\t%s\n", services.FormatAspectRatio(c.AspectRatio))
	fmt.Fprintf(w, "Focus distance\t%g\n", c.FocusDistance)
	fmt.Fprintf(w, "Aperture\tf/%g\n", c.Aperture)
	fmt.Fprintf(w, "Max depth\t%d\n", c.MaxDepth)
	fmt.Fprintf(w, "Samples per pixel\t%d\n", c.SamplesPerPixel)
}
