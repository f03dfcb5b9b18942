package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"grain-auction/internal/config"
	"grain-auction/internal/repository"
)

type closeTrackingStore struct {
	*repository.MemoryRepo
	closed atomic.Bool
}

func (s *closeTrackingStore) Close() error {
	s.closed.Store(true)
	return s.MemoryRepo.Close()
}

func trackingOpener(store *closeTrackingStore) storeOpener {
	return func(context.Context, config.Config) (repository.AuctionStore, error) {
		return store, nil
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(func(string) (string, bool) { return "", false })
	require.NoError(t, err)
	cfg.Port = "0"
	return cfg
}

func TestRun_StartupFailureClosesStore(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"missing_catalog", func(c *config.Config) { c.CatalogPath = missing }, "load grain catalog"},
		{"missing_directory", func(c *config.Config) { c.DirectoryPath = missing }, "load user directory"},
		{"s3_without_bucket", func(c *config.Config) { c.ArchiveDriver = config.ArchiveS3; c.S3.Bucket = "" }, "open result archive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig(t)
			tt.mutate(&cfg)
			store := &closeTrackingStore{MemoryRepo: repository.NewMemoryRepo()}

			err := run(context.Background(), cfg, trackingOpener(store), make(chan os.Signal))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
			require.True(t, store.closed.Load())
		})
	}
}

func TestRun_OpenFailureIsReported(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	open := func(context.Context, config.Config) (repository.AuctionStore, error) { return nil, boom }
	err := run(context.Background(), testConfig(t), open, make(chan os.Signal))
	require.ErrorIs(t, err, boom)
}

func TestRun_StopsOnSignal(t *testing.T) {
	t.Parallel()

	store := &closeTrackingStore{MemoryRepo: repository.NewMemoryRepo()}
	stop := make(chan os.Signal, 1)
	stop <- syscall.SIGTERM

	require.NoError(t, run(context.Background(), testConfig(t), trackingOpener(store), stop))
	require.True(t, store.closed.Load())
}
