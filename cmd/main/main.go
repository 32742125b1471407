package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"xapi-connector/src/config"
	datasource "xapi-connector/src/data_source"
	"xapi-connector/src/grpc_control"
	"xapi-connector/src/logger"
	"xapi-connector/src/metrics"
	"xapi-connector/src/models"
	"xapi-connector/src/server"

	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/gateway.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)
	defer appLogger.Sync()

	if !conf.HasCredentials() {
		appLogger.Critical("No xAPI credentials: set xapi.user/xapi.password or XAPI_USER/XAPI_PASSWORD")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, appLogger); err != nil {
		appLogger.Critical("Gateway stopped: %v", err)
		appLogger.Sync()
		os.Exit(1)
	}
	appLogger.Info("Shutdown complete.")
}

// -----------------------------------------------------------------------------

// run wires the gateway and blocks until ctx is cancelled or a component
// fails.
func run(ctx context.Context, conf *config.Config, appLogger *logger.Logger) error {
	cfg := conf.MConfig
	cmdMetrics := metrics.NewCommandMetrics()

	// 1. Journal first: resolving watchlist references rewrites the symbol list
	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	symbols, err := setupCache(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	if symbols != nil {
		defer symbols.Close()
	}

	// 2. Components
	client, err := setupClient(cfg, cmdMetrics)
	if err != nil {
		return err
	}
	memManager := setupMemory(cfg)
	defer memManager.Cleanup()
	source := datasource.NewXapiTickSource(cfg, client, logger.NewLogger(cfg, "TickSource"))
	srv := server.NewGatewayServer(conf, server.Deps{
		Client:  client,
		Symbols: symbols,
		Journal: db,
		Memory:  memManager,
		Metrics: cmdMetrics,
	}, logger.NewLogger(cfg, "Gateway"))
	health := grpc_control.NewHealthService(client, 5*time.Second, logger.NewLogger(cfg, "Health"))

	// 3. Session
	if err := connectAndLogin(ctx, client, cfg, appLogger); err != nil {
		return fmt.Errorf("cannot open xAPI session: %w", err)
	}
	cmdMetrics.SetLoggedIn(true)
	defer closeSession(client, cmdMetrics, appLogger)

	// 4. Bootstrap
	bootstrap(ctx, client, source, symbols, db, memManager, srv, appLogger)

	// 5. Servers, poller, keep-alive and data loop
	g, gctx := errgroup.WithContext(ctx)
	startServers(gctx, g, srv, health, conf, appLogger)

	var wg sync.WaitGroup
	updatesChan := make(chan models.MTickBatch, 100)
	if err := source.Start(gctx, updatesChan, &wg); err != nil {
		return err
	}

	g.Go(func() error {
		keepSessionAlive(gctx, client, cfg, cmdMetrics, appLogger)
		return nil
	})
	g.Go(func() error {
		runDataLoop(gctx, updatesChan, db, memManager, srv, cmdMetrics, appLogger)
		return nil
	})

	err = g.Wait()
	appLogger.Info("Waiting for the tick source to stop...")
	wg.Wait()
	return err
}
