package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/threedev/studio/internal/auth"
	"github.com/threedev/studio/internal/cli"
	"github.com/threedev/studio/internal/database"
	"github.com/threedev/studio/internal/database/preferences"
	"github.com/threedev/studio/internal/database/users"
	"github.com/threedev/studio/internal/exporters"
	"github.com/threedev/studio/internal/scheduler"
	"github.com/threedev/studio/internal/services"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// AccountStore implementations
var _ services.AccountStore = (*users.Repository)(nil)

// PreferencesStore / RenderStore implementations
var _ services.PreferencesStore = (*preferences.Repository)(nil)
var _ services.RenderStore = (*preferences.Repository)(nil)

// SettingsSource implementations
var _ exporters.SettingsSource = (*preferences.Repository)(nil)

// =============================================================================
// Credentials
// =============================================================================

var _ users.CredentialHasher = (*auth.BcryptHasher)(nil)
var _ auth.AvailabilityChecker = (*users.Repository)(nil)

// =============================================================================
// Backups
// =============================================================================

var _ scheduler.Snapshotter = (*database.Database)(nil)

// =============================================================================
// Shell Commands
// =============================================================================

var (
	_ cli.Command = (*cli.SignUpCommand)(nil)
	_ cli.Command = (*cli.SignInCommand)(nil)
	_ cli.Command = (*cli.SignOutCommand)(nil)
	_ cli.Command = (*cli.WhoAmICommand)(nil)
	_ cli.Command = (*cli.AccountCommand)(nil)
	_ cli.Command = (*cli.SettingsCommand)(nil)
	_ cli.Command = (*cli.PrefsCommand)(nil)
	_ cli.Command = (*cli.RenderCommand)(nil)
	_ cli.Command = (*cli.ExportCommand)(nil)
	_ cli.Command = (*cli.BackupCommand)(nil)
	_ cli.Command = (*cli.BackupDaemonCommand)(nil)
)
