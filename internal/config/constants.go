package config

// Default locations inside the application data directory
const (
	// AppDirName is the directory created under the user's config dir
	AppDirName = "3Dev"

	// DatabaseFileName is the store file kept in the data directory
	DatabaseFileName = "3Dev.db"

	// SessionTokenFileName holds the token of the signed-in session
	SessionTokenFileName = "session"

	// BackupDirName is the directory receiving store snapshots
	BackupDirName = "backups"
)
