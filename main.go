package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grain-auction/internal/access"
	"grain-auction/internal/archive"
	bidding "grain-auction/internal/biddingService"
	"grain-auction/internal/catalog"
	"grain-auction/internal/config"
	"grain-auction/internal/metrics"
	"grain-auction/internal/registry"
	"grain-auction/internal/repository"
	"grain-auction/internal/server"
	"grain-auction/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}
	if err := utils.ConfigureLogger(cfg.LogLevel, nil); err != nil {
		utils.Fatal("failed to configure logger", map[string]any{"error": err.Error()})
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Fatal exits without running defers, so run owns every resource and only reports back
	if err := run(context.Background(), cfg, openStore, quit); err != nil {
		utils.Fatal("grain auction server failed", map[string]any{"error": err.Error()})
	}
	utils.Info("server exited", nil)
}

type storeOpener func(ctx context.Context, cfg config.Config) (repository.AuctionStore, error)

func openStore(ctx context.Context, cfg config.Config) (repository.AuctionStore, error) {
	return repository.Open(ctx, cfg.StorageDriver, cfg.SQLitePath, cfg.PostgresDSN)
}

// run wires the service and serves until stop fires or the listener fails.
// The store is closed on every return path.
func run(ctx context.Context, cfg config.Config, open storeOpener, stop <-chan os.Signal) error {
	store, err := open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open auction store (%s): %w", cfg.StorageDriver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			utils.Warn("closing auction store failed", map[string]any{"error": err.Error()})
		}
	}()

	reg := registry.New(store, nil)
	if err := reg.Restore(ctx); err != nil {
		return fmt.Errorf("restore auctions: %w", err)
	}

	grains, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load grain catalog %q: %w", cfg.CatalogPath, err)
	}
	directory, err := loadDirectory(cfg.DirectoryPath)
	if err != nil {
		return fmt.Errorf("load user directory %q: %w", cfg.DirectoryPath, err)
	}
	results, err := openArchive(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open result archive (%s): %w", cfg.ArchiveDriver, err)
	}

	recorder := metrics.NewRecorder()
	auctionSvc := bidding.NewAuctionService(reg, access.NewGate(directory), grains,
		bidding.WithArchive(results),
		bidding.WithMetrics(recorder),
		bidding.WithStoreTimeout(cfg.StoreTimeout),
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.SetupRouter(auctionSvc, recorder),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		utils.Info("starting grain auction server", map[string]any{
			"addr":     srv.Addr,
			"storage":  cfg.StorageDriver,
			"archive":  cfg.ArchiveDriver,
			"auctions": reg.Len(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-stop:
	}

	utils.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("forced shutdown", map[string]any{"error": err.Error()})
	}
	return nil
}

func loadCatalog(path string) (catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

func loadDirectory(path string) (access.Directory, error) {
	if path == "" {
		utils.Warn("no user directory configured, using built-in demo users", nil)
		return access.DefaultDirectory(), nil
	}
	return access.LoadDirectoryFile(path)
}

func openArchive(ctx context.Context, cfg config.Config) (archive.Archive, error) {
	switch cfg.ArchiveDriver {
	case config.ArchiveMemory:
		return archive.NewMemoryArchive(), nil
	case config.ArchiveS3:
		return archive.NewS3Archive(ctx, archive.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
	default:
		return archive.Discard{}, nil
	}
}
