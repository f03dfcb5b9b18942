// Package config reads service settings from the environment.
//
//	PORT                              HTTP port (default 8080)
//	GRAIN_AUCTION_LOG_LEVEL           logrus level (default info)
//	GRAIN_AUCTION_STORAGE_DRIVER      memory|sqlite|postgres (default memory)
//	GRAIN_AUCTION_SQLITE_PATH         sqlite file (default ./grain-auction.db)
//	GRAIN_AUCTION_POSTGRES_DSN        postgres DSN when driver=postgres
//	GRAIN_AUCTION_STORE_TIMEOUT       per-write store timeout (default 5s)
//	GRAIN_AUCTION_CATALOG_PATH        YAML grain catalog (default built-in)
//	GRAIN_AUCTION_DIRECTORY_PATH      YAML user directory (default built-in)
//	GRAIN_AUCTION_ARCHIVE_DRIVER      none|memory|s3 (default none)
//	GRAIN_AUCTION_S3_BUCKET / _REGION / _ENDPOINT / _PATH_STYLE
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (optional)
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"grain-auction/internal/repository"
)

// ArchiveDriver selects where finalized results are archived
type ArchiveDriver string

const (
	ArchiveNone   ArchiveDriver = "none"
	ArchiveMemory ArchiveDriver = "memory"
	ArchiveS3     ArchiveDriver = "s3"
)

// Config is the resolved service configuration
type Config struct {
	Port          string
	LogLevel      string
	StorageDriver repository.StorageDriver
	SQLitePath    string
	PostgresDSN   string
	StoreTimeout  time.Duration
	CatalogPath   string
	DirectoryPath string
	ArchiveDriver ArchiveDriver
	S3            S3
}

// S3 holds archive bucket settings
type S3 struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Load resolves configuration using os.LookupEnv
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom resolves configuration from an arbitrary lookup function
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Port:          get("PORT", "8080"),
		LogLevel:      get("GRAIN_AUCTION_LOG_LEVEL", "info"),
		StorageDriver: repository.StorageDriver(strings.ToLower(get("GRAIN_AUCTION_STORAGE_DRIVER", string(repository.StorageMemory)))),
		SQLitePath:    get("GRAIN_AUCTION_SQLITE_PATH", "grain-auction.db"),
		PostgresDSN:   get("GRAIN_AUCTION_POSTGRES_DSN", ""),
		CatalogPath:   get("GRAIN_AUCTION_CATALOG_PATH", ""),
		DirectoryPath: get("GRAIN_AUCTION_DIRECTORY_PATH", ""),
		ArchiveDriver: ArchiveDriver(strings.ToLower(get("GRAIN_AUCTION_ARCHIVE_DRIVER", string(ArchiveNone)))),
		S3: S3{
			Bucket:          get("GRAIN_AUCTION_S3_BUCKET", ""),
			Region:          get("GRAIN_AUCTION_S3_REGION", "us-east-1"),
			Endpoint:        get("GRAIN_AUCTION_S3_ENDPOINT", ""),
			AccessKeyID:     get("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: get("AWS_SECRET_ACCESS_KEY", ""),
		},
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("config: PORT %q is not a number", cfg.Port)
	}

	timeout, err := time.ParseDuration(get("GRAIN_AUCTION_STORE_TIMEOUT", "5s"))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("config: GRAIN_AUCTION_STORE_TIMEOUT must be a positive duration")
	}
	cfg.StoreTimeout = timeout

	pathStyle, err := strconv.ParseBool(get("GRAIN_AUCTION_S3_PATH_STYLE", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("config: GRAIN_AUCTION_S3_PATH_STYLE: %w", err)
	}
	cfg.S3.PathStyle = pathStyle

	switch cfg.StorageDriver {
	case repository.StorageMemory, repository.StorageSQLite, repository.StoragePostgres:
	default:
		return Config{}, fmt.Errorf("config: unknown storage driver %q", cfg.StorageDriver)
	}
	switch cfg.ArchiveDriver {
	case ArchiveNone, ArchiveMemory:
	case ArchiveS3:
		if cfg.S3.Bucket == "" {
			return Config{}, fmt.Errorf("config: GRAIN_AUCTION_S3_BUCKET required for s3 archive")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown archive driver %q", cfg.ArchiveDriver)
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string { return ":" + c.Port }
