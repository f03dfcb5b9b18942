package repository

import (
	"context"
	"fmt"
)

// StorageDriver identifies a concrete AuctionStore implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// Open selects a backend by driver name. An empty driver means memory.
func Open(ctx context.Context, driver StorageDriver, sqlitePath, postgresDSN string) (AuctionStore, error) {
	switch driver {
	case "", StorageMemory:
		return NewMemoryRepo(), nil
	case StorageSQLite:
		return OpenSQLite(ctx, sqlitePath)
	case StoragePostgres:
		return OpenPostgres(ctx, postgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
