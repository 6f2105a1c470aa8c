// Package app initializes the readify storage process: it loads
// configuration, sets up logging, selects a storage backend and verifies it
// is ready to serve repositories (connectivity plus declared indexes).
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/readify-app/readify/internal/config"
	"github.com/readify-app/readify/internal/db/jsondb"
	"github.com/readify-app/readify/internal/db/memorystorage"
	"github.com/readify-app/readify/internal/db/mongodb"
	"github.com/readify-app/readify/internal/db/storage"
	"github.com/readify-app/readify/internal/logger"
	"github.com/readify-app/readify/internal/models"
	"github.com/readify-app/readify/internal/service"
)

// App bundles the configuration, the selected storage backend and the
// service layer handlers consume.
type App struct {
	cfg *config.Config
	db  storage.Storage

	// Service is the in-process API request handlers call.
	Service *service.Service
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - selecting and setting up storage
// - constructing the service layer over it
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.db, err = getStorageByType(app.cfg)
	if err != nil {
		return nil, err
	}

	app.Service = service.New(app.db)

	return app, nil
}

// Run verifies the storage is reachable and ready. Index maintenance is
// self-healing on every write, so a successful connect plus ping means the
// repositories can serve requests.
func (a *App) Run(ctx context.Context) error {
	if err := a.db.Ping(ctx); err != nil {
		return fmt.Errorf("storage ping error: %w", err)
	}

	logger.Log.Infoln(
		"storage ready",
		"backend", storageTypeName(getAvailableStorageType(a.cfg)),
		"database", a.cfg.DatabaseName,
	)

	return nil
}

// Close releases the storage backend and flushes the logger.
func (a *App) Close(ctx context.Context) error {
	err := a.db.Close(ctx)

	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Println("Logger sync error:", syncErr)
	}

	return err
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypeMongo
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func storageTypeName(storageType int) string {
	switch storageType {
	case models.StorageTypeMongo:
		return "mongodb"
	case models.StorageTypeFile:
		return "jsondb"
	case models.StorageTypeMemory:
		return "memory"
	}

	return "unknown"
}

func getStorageByType(cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypeMongo:
		return mongodb.New(
			context.Background(),
			cfg.DatabaseDSN,
			cfg.DatabaseName,
			cfg.DBConnectionTimeout,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
