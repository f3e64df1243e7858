package constants

const (
	AppName            = "cadence"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/cadence/cadence.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MemoryConfig selects the in-memory store instead of a database
	MemoryConfig = "memory://"

	// Environment variables
	EnvConfig       = "CADENCE_CONFIG"
	EnvOwner        = "CADENCE_OWNER"
	EnvTimezone     = "CADENCE_TIMEZONE"
	EnvDBConnection = "CADENCE_DB_CONNECTION"

	// DefaultOwner is used by the CLI when no owner is given; the HTTP API always
	// requires an explicit owner.
	DefaultOwner = "local"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "cadence-"
	BackupFileSuffix = ".db"

	// HTTP
	DefaultListenAddr = "127.0.0.1:8080"
	OwnerHeader       = "X-Owner-ID"

	// Habit name bounds (runes, after trimming)
	HabitNameMinLen = 2
	HabitNameMaxLen = 50
)
