package storage

import (
	"errors"
	"fmt"

	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/storage/memory"
	"github.com/julianstephens/cadence/internal/storage/postgres"
	"github.com/julianstephens/cadence/internal/storage/sqlite"
	"github.com/julianstephens/cadence/internal/utils"
)

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
	_ Provider = (*memory.Store)(nil)
)

// Kind names the backend a config value selects
type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindMemory   Kind = "memory"
)

// KindOf classifies a --config value
func KindOf(config string) Kind {
	switch {
	case config == constants.MemoryConfig:
		return KindMemory
	case postgres.IsConnString(config):
		return KindPostgres
	default:
		return KindSQLite
	}
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string
// carries a password, which is never accepted on the command line.
func HasEmbeddedCredentials(connStr string) bool {
	_, err := postgres.ValidateConnString(connStr)
	return errors.Is(err, postgres.ErrEmbeddedCredentials)
}

// Open returns the provider for config without touching the database. Call
// Init or Load on the result.
func Open(config string) (Provider, error) {
	switch KindOf(config) {
	case KindMemory:
		return memory.NewStore(), nil
	case KindPostgres:
		if _, err := postgres.ValidateConnString(config); err != nil {
			return nil, err
		}
		return postgres.New(config), nil
	default:
		path, err := utils.ExpandPath(config)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		return sqlite.NewStore(path), nil
	}
}

// OpenTrusted is Open for connection strings read from the environment or the
// OS keyring, where an embedded password is allowed.
func OpenTrusted(config string) (Provider, error) {
	if KindOf(config) == KindPostgres {
		if _, err := postgres.ValidateConnString(config); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, err
		}
		return postgres.New(config), nil
	}
	return Open(config)
}

// Migrator is implemented by providers backed by a versioned SQL schema
type Migrator interface {
	Migrate(logFn func(string)) (int, error)
}

// SchemaReporter is implemented by providers that can report migration state
type SchemaReporter interface {
	SchemaVersions() (current, latest int, err error)
}
