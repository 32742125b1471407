package main

import (
	"context"
	"time"

	"xapi-connector/src/cache"
	"xapi-connector/src/interfaces"
	"xapi-connector/src/logger"
	"xapi-connector/src/metrics"
	"xapi-connector/src/models"
	"xapi-connector/src/utils"
	"xapi-connector/src/xapi"
)

const cleanupInterval = time.Hour

// -----------------------------------------------------------------------------

// bootstrap warms the symbol cache and the served snapshot before the
// poller starts. Failures only cost the warm start.
func bootstrap(
	ctx context.Context,
	client *xapi.Client,
	source interfaces.IDataSource,
	symbols *cache.SymbolCache,
	db interfaces.IDatabase,
	memManager *utils.MemoryManager,
	srv interfaces.IDataExchanger,
	appLogger *logger.Logger,
) {
	appLogger.Info("Fetching symbol catalogue...")
	all, err := client.GetAllSymbols(ctx)
	if err != nil {
		appLogger.Warning("Initial getAllSymbols failed: %v", err)
	} else {
		appLogger.Info("Catalogue holds %d symbols", len(all))
		if symbols != nil {
			if err := symbols.SetAll(all); err != nil {
				appLogger.Warning("Failed to cache symbols: %v", err)
			}
		}
		if db != nil {
			if err := db.SaveSymbols(all); err != nil {
				appLogger.Warning("Failed to journal symbols: %v", err)
			}
		}
	}

	appLogger.Info("Fetching initial quotes...")
	batch, err := source.FetchUpdateData(ctx)
	if err != nil {
		appLogger.Warning("Initial fetch failed: %v", err)
		return
	}
	persist(batch, db, memManager, appLogger)
	srv.UpdateAllDatas(batch)
	appLogger.Info("Initialization complete with %d quotes.", len(batch.Ticks))
}

// -----------------------------------------------------------------------------

// runDataLoop handles the main data processing loop (direct push model)
func runDataLoop(
	ctx context.Context,
	updatesChan <-chan models.MTickBatch,
	db interfaces.IDatabase,
	memManager *utils.MemoryManager,
	srv interfaces.IDataExchanger,
	m *metrics.CommandMetrics,
	appLogger *logger.Logger,
) {
	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()

	appLogger.Info("Starting data loop (Push Model)...")

	for {
		select {
		case <-ctx.Done():
			appLogger.Info("Shutting down data loop...")
			return

		case batch := <-updatesChan:
			appLogger.Debug("Received %d new quotes for %d symbols", len(batch.Ticks), batch.Metrics.Symbols)
			m.AddTicks(len(batch.Ticks))
			persist(batch, db, memManager, appLogger)
			srv.Broadcast(batch)

		case <-cleanup.C:
			memManager.CheckMemoryLimits()
			if db != nil {
				if err := db.CleanupOldData(); err != nil {
					appLogger.Error("Journal cleanup failed: %v", err)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func persist(batch models.MTickBatch, db interfaces.IDatabase, memManager *utils.MemoryManager, appLogger *logger.Logger) {
	if len(batch.Ticks) == 0 {
		return
	}
	memManager.AddTicks(batch.Ticks)
	if db != nil {
		if err := db.SaveTicks(batch.Ticks, batch.FetchedAt); err != nil {
			appLogger.Error("Failed to journal %d quotes: %v", len(batch.Ticks), err)
		}
	}
}
