// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - AccountStore: Accounts and credentials (internal/services/interfaces.go)
//   - PreferencesStore: UI preferences and the combined settings view (internal/services/interfaces.go)
//   - RenderStore: Render configurations (internal/services/interfaces.go)
//   - SettingsSource: Read side used by the YAML exporter (internal/exporters/generic.go)
//
// ## Credential Interfaces
//
//   - CredentialHasher: One-way credential hashing (internal/database/users/repository.go)
//   - AvailabilityChecker: Username uniqueness lookups during sign-up (internal/auth/validator.go)
//
// ## Background Work
//
//   - Snapshotter: Consistent copies of the store (internal/scheduler/backup.go)
//
// # Adding a New Settings Domain
//
// To add a new group of per-user settings (e.g., keybindings):
//
//  1. Add the entity and its Update type in internal/entities/, with a
//     Columns method listing only the supplied fields.
//
//  2. Add a numbered goose migration under internal/database/migrations/
//     creating the table with ON DELETE CASCADE to users(id).
//
//  3. Define repository methods scoped by user ID:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  4. Expose them through a store interface in internal/services/ and a
//     manager that validates input.
//
//  5. Add compile-time check:
//
//     var _ services.KeybindingStore = (*keybindings.Repository)(nil)
//
// # Adding a New Shell Command
//
//  1. Implement cli.Command in internal/cli/ with ParseFlags and Run.
//  2. Register a factory in the commands map in main.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
