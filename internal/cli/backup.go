package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/threedev/studio/internal/entrypoint"
	"github.com/threedev/studio/internal/scheduler"
)

// ExportCommand writes the signed-in account's settings as YAML
type ExportCommand struct {
	app     *entrypoint.App
	console *Console

	Output string
}

func NewExportCommand(app *entrypoint.App, console *Console) *ExportCommand {
	return &ExportCommand{app: app, console: console}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := cmd.console.newFlagSet("export", "export [-o file]")
	fs.StringVar(&cmd.Output, "o", "", "Output file (defaults to standard output)")
	return fs.Parse(args)
}

func (cmd *ExportCommand) Run(ctx context.Context) error {
	user, err := requireUser(ctx, cmd.app)
	if err != nil {
		return err
	}

	if cmd.Output == "" {
		_, err := cmd.app.Exporter.Export(ctx, user.Username, cmd.console.Out)
		return err
	}

	result, err := cmd.app.Exporter.ExportToFile(ctx, user.Username, cmd.Output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.console.Err, "Exported settings and %d render configurations to %s\n", result.RenderConfigs, result.Path)
	return nil
}

// BackupCommand snapshots the store now, or lists existing snapshots
type BackupCommand struct {
	app     *entrypoint.App
	console *Console

	List bool
}

func NewBackupCommand(app *entrypoint.App, console *Console) *BackupCommand {
	return &BackupCommand{app: app, console: console}
}

func (cmd *BackupCommand) ParseFlags(args []string) error {
	fs := cmd.console.newFlagSet("backup", "backup [-list]")
	fs.BoolVar(&cmd.List, "list", false, "List existing snapshots instead of creating one")
	return fs.Parse(args)
}

func (cmd *BackupCommand) Run(ctx context.Context) error {
	out := cmd.console.Out

	if cmd.List {
		snapshots, err := cmd.app.Backups.Snapshots()
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Fprintf(out, "No snapshots in %s\n", cmd.app.Config.Backup.Dir)
			return nil
		}
		for _, s := range snapshots {
			fmt.Fprintln(out, filepath.Base(s))
		}
		return nil
	}

	path, err := cmd.app.Backups.RunNow(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Snapshot written to %s\n", path)
	return nil
}

// BackupDaemonCommand runs scheduled snapshots while auto save is on
type BackupDaemonCommand struct {
	app     *entrypoint.App
	console *Console
}

func NewBackupDaemonCommand(app *entrypoint.App, console *Console) *BackupDaemonCommand {
	return &BackupDaemonCommand{app: app, console: console}
}

func (cmd *BackupDaemonCommand) ParseFlags(args []string) error {
	return cmd.console.newFlagSet("backup-daemon", "backup-daemon").Parse(args)
}

func (cmd *BackupDaemonCommand) Run(ctx context.Context) error {
	schedule := cmd.app.Config.Backup.Schedule
	if err := scheduler.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	fmt.Fprintf(cmd.console.Out, "Backing up %s (%s) while auto save is on. Press Ctrl+C to stop.\n",
		cmd.app.Config.Database.Path, scheduler.GetCronDescription(schedule))
	return cmd.app.RunBackupDaemon(ctx)
}
