// Package database owns the on-disk store: its location, its schema and
// the connection handle handed to repositories.
//
// # Architecture
//
//	database/
//	├── database.go      # Store location, connection setup, backups
//	├── migrations/      # Embedded goose migrations applied at startup
//	├── users/           # Accounts: creation, lookup, credentials
//	└── preferences/     # UI and render preferences
//
// # Using Sub-packages
//
// Each sub-package provides a Repository constructed around the shared handle:
//
//	db, err := database.NewDatabase(cfg.Database.Path)
//
//	accounts := users.NewRepository(db.DB, auth.NewBcryptHasher(cfg.Auth.BcryptCost))
//	prefs := preferences.NewRepository(db.DB)
//
// There is no package-level handle; the caller decides how many stores exist.
package database
