package core

import (
	"fmt"
	"os"

	"dircore/internal/infra/persistence/memory"
	"dircore/internal/infra/persistence/postgres"
	"dircore/internal/infra/persistence/sqlite"
	"dircore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

type (
	Transaction     = domain.Transaction
	PersistentStore = domain.PersistentStore
)

func newMemoryStore(suffix DN, engine *RulesEngine) *memory.Store {
	return memory.NewStore(suffix, engine)
}

// OpenStore opens the backend named by driver. An empty driver selects
// sqlite. The dsn argument is the sqlite path or postgres connection string
// depending on the driver; empty falls back to each backend's default.
func OpenStore(driver StorageDriver, dsn string, suffix DN, engine *RulesEngine) (PersistentStore, error) {
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(suffix, engine), nil
	case StorageSQLite:
		return sqlite.NewStore(dsn, suffix, engine)
	case StoragePostgres:
		return postgres.NewStore(dsn, suffix, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	DIRCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	DIRCORE_SQLITE_PATH: path to sqlite file (default ./dircore.db)
//	DIRCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(suffix DN, engine *RulesEngine) (PersistentStore, error) {
	driver := StorageDriver(os.Getenv("DIRCORE_STORAGE_DRIVER"))
	dsn := os.Getenv("DIRCORE_SQLITE_PATH")
	if driver == StoragePostgres {
		dsn = os.Getenv("DIRCORE_POSTGRES_DSN")
	}
	return OpenStore(driver, dsn, suffix, engine)
}
