package main

import (
	"context"
	"time"

	"xapi-connector/src/cache"
	"xapi-connector/src/interfaces"
	"xapi-connector/src/logger"
	"xapi-connector/src/models"
	"xapi-connector/src/storage"
	"xapi-connector/src/utils"
	"xapi-connector/src/xapi"
)

// gatewayMemoryMB bounds the in-memory tick buffers.
const gatewayMemoryMB = 256

// -----------------------------------------------------------------------------

// setupDatabase opens the journal named by storage.db_type; nil when it is
// "none".
func setupDatabase(config *models.MConfig, appLogger *logger.Logger) (interfaces.IDatabase, error) {
	db, err := storage.NewDatabase(config, logger.NewLogger(config, "Journal"))
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
		return nil, err
	}
	if db == nil {
		appLogger.Info("No journal configured; ticks are kept in memory only")
		return nil, nil
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
		return nil, err
	}
	return db, nil
}

// -----------------------------------------------------------------------------

func setupCache(ctx context.Context, config *models.MConfig, appLogger *logger.Logger) (*cache.SymbolCache, error) {
	if !config.Cache.Enabled {
		return nil, nil
	}
	symbols, err := cache.NewSymbolCache(ctx, time.Duration(config.Cache.TTLSeconds)*time.Second)
	if err != nil {
		appLogger.Critical("Failed to create symbol cache: %v", err)
		return nil, err
	}
	return symbols, nil
}

// -----------------------------------------------------------------------------

func setupClient(config *models.MConfig, observer interfaces.ICommandObserver) (*xapi.Client, error) {
	return xapi.NewClientFromConfig(&config.Xapi,
		xapi.WithObserver(observer),
		xapi.WithLogger(logger.NewLogger(config, "XapiClient")),
	)
}

// -----------------------------------------------------------------------------

func setupMemory(config *models.MConfig) *utils.MemoryManager {
	maxPoints := utils.CalculateMaxDataPoints(config.DataSource.UpdateIntervalSeconds)
	return utils.NewMemoryManager(gatewayMemoryMB, maxPoints, logger.NewLogger(config, "MemoryManager"))
}
