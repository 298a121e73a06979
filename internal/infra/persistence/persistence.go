// Package persistence selects a document store backend from the
// environment.
package persistence

import (
	"fmt"
	"os"

	"github.com/philharmoniedeparis/metascore-library-sub004/internal/core"
	"github.com/philharmoniedeparis/metascore-library-sub004/internal/infra/persistence/memory"
	"github.com/philharmoniedeparis/metascore-library-sub004/internal/infra/persistence/postgres"
	"github.com/philharmoniedeparis/metascore-library-sub004/internal/infra/persistence/sqlite"
	"github.com/philharmoniedeparis/metascore-library-sub004/pkg/domain"
)

// StorageDriver identifies a concrete storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

var (
	_ domain.DocumentStore = (*core.Store)(nil)
	_ domain.DocumentStore = (*memory.Store)(nil)
	_ domain.DocumentStore = (*sqlite.Store)(nil)
	_ domain.DocumentStore = (*postgres.Store)(nil)
)

// OpenDocumentStore selects a backend using environment variables.
// Defaults to memory when unset.
//
//	METASCORE_STORAGE_DRIVER: memory|sqlite|postgres (default memory)
//	METASCORE_SQLITE_PATH: path to sqlite file (default ./metascore.db)
//	METASCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenDocumentStore(opts ...core.StoreOption) (domain.DocumentStore, error) {
	driver := os.Getenv("METASCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageMemory)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(opts...), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("METASCORE_SQLITE_PATH"), opts...)
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("METASCORE_POSTGRES_DSN"), opts...)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
