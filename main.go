package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/threedev/studio/internal/cli"
	"github.com/threedev/studio/internal/config"
	"github.com/threedev/studio/internal/entrypoint"
	"github.com/threedev/studio/internal/logger"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type commandFactory func(*entrypoint.App, *cli.Console) cli.Command

var commands = map[string]commandFactory{
	"signup":        func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewSignUpCommand(a, c) },
	"signin":        func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewSignInCommand(a, c) },
	"signout":       func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewSignOutCommand(a, c) },
	"whoami":        func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewWhoAmICommand(a, c) },
	"settings":      func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewSettingsCommand(a, c) },
	"prefs":         func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewPrefsCommand(a, c) },
	"render":        func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewRenderCommand(a, c) },
	"account":       func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewAccountCommand(a, c) },
	"export":        func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewExportCommand(a, c) },
	"backup":        func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewBackupCommand(a, c) },
	"backup-daemon": func(a *entrypoint.App, c *cli.Console) cli.Command { return cli.NewBackupDaemonCommand(a, c) },
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "-h", "--help", "help":
		printUsage()
		return
	case "version":
		fmt.Printf("3dev %s (%s)\n", Version, Commit)
		return
	}

	factory, ok := commands[command]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	os.Exit(run(factory, args))
}

func run(factory commandFactory, args []string) int {
	cfg := config.NewConfig()

	log, err := logger.New(cfg.Logging.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	app, err := entrypoint.NewApp(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("failed to close store", "error", err)
		}
	}()

	cmd := factory(app, cli.NewConsole(os.Stdin))
	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if err := cmd.Run(context.Background()); err != nil {
		if !errors.Is(err, cli.ErrRejected) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  signup         Create an account and sign in\n")
	fmt.Fprintf(os.Stderr, "  signin         Sign in to an existing account\n")
	fmt.Fprintf(os.Stderr, "  signout        End the current session\n")
	fmt.Fprintf(os.Stderr, "  whoami         Show the signed-in account\n")
	fmt.Fprintf(os.Stderr, "  settings       Show appearance and render settings\n")
	fmt.Fprintf(os.Stderr, "  prefs          Change theme and auto save\n")
	fmt.Fprintf(os.Stderr, "  render         List, show, create, change or delete render configurations\n")
	fmt.Fprintf(os.Stderr, "  account        Rename the account, change its password or delete it\n")
	fmt.Fprintf(os.Stderr, "  export         Export settings as YAML\n")
	fmt.Fprintf(os.Stderr, "  backup         Snapshot the store now\n")
	fmt.Fprintf(os.Stderr, "  backup-daemon  Snapshot the store on a schedule while auto save is on\n")
	fmt.Fprintf(os.Stderr, "  version        Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "\nEnvironment:\n")
	fmt.Fprintf(os.Stderr, "  THREEDEV_DATA_DIR        Application data directory (default %s)\n", config.DefaultDataDir())
	fmt.Fprintf(os.Stderr, "  THREEDEV_DATABASE_PATH   Store file (default <data dir>/%s)\n", config.DatabaseFileName)
	fmt.Fprintf(os.Stderr, "  THREEDEV_LOG_MODE        development or production\n")
	fmt.Fprintf(os.Stderr, "  THREEDEV_BACKUP_SCHEDULE Cron schedule for backup-daemon\n")
}
